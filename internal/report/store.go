package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chanuu123/Dial-100-Automation/internal/call"
)

const (
	filePrefix   = "incident_report_"
	headerPrefix = "--- Emergency Call Report "
	timeLayout   = "2006-01-02 15-04"
)

// Store persists one plain-text report per call. File names carry the
// human-readable minute timestamp plus a call-ID suffix so two calls
// finishing in the same minute never overwrite each other.
type Store struct {
	dir string
}

func NewStore(dir string) *Store { return &Store{dir: dir} }

// lineBreaks folds embedded newlines into spaces so every turn occupies
// exactly one line; ParseTranscript depends on that.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Save writes the session transcript and returns the report path.
func (s *Store) Save(sess *call.Session) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("reports dir: %w", err)
	}

	ts := sess.StartedAt.Format(timeLayout)
	name := fmt.Sprintf("%s%s_%s.txt", filePrefix, ts, shortID(sess.ID))
	path := filepath.Join(s.dir, name)

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s ---\n\n", headerPrefix, ts)
	for _, t := range sess.History {
		fmt.Fprintf(&b, "%s: %s\n", t.Role, lineBreaks.Replace(t.Text))
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}

// ParseTranscript reads a report back into ordered turns. It is the inverse
// of Save for the turn lines; header and blank lines are skipped.
func ParseTranscript(r io.Reader) ([]call.Turn, error) {
	var turns []call.Turn
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "---") {
			continue
		}
		role, text, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, fmt.Errorf("malformed transcript line: %q", line)
		}
		switch call.Role(role) {
		case call.RoleCaller, call.RoleAgent:
			turns = append(turns, call.Turn{Role: call.Role(role), Text: text})
		default:
			return nil, fmt.Errorf("unknown role %q in transcript", role)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return turns, nil
}

// FormatTurns renders turns the way Save writes them, one per line.
func FormatTurns(turns []call.Turn) string {
	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Text)
	}
	return b.String()
}

// Latest returns the newest report file in dir.
func Latest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, filePrefix+"*.txt"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no reports in %s", dir)
	}
	newest := matches[0]
	newestMod := int64(-1)
	for _, m := range matches {
		st, err := os.Stat(m)
		if err != nil {
			continue
		}
		if mod := st.ModTime().UnixNano(); mod > newestMod {
			newest, newestMod = m, mod
		}
	}
	return newest, nil
}
