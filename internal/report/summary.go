package report

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/chanuu123/Dial-100-Automation/internal/llm"
)

// ErrParse indicates the model reply did not contain the expected
// bracketed list.
var ErrParse = errors.New("failed to parse incident")

// Completer is the single-shot LLM call the summarizer needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Incident is the structured dispatch summary of one transcript.
type Incident struct {
	Summary    string `json:"summary"`
	Ambulance  string `json:"ambulance"`
	FireEngine string `json:"fire_engine"`
	Injured    string `json:"injured"`
	Dead       string `json:"dead"`
}

var bracketRe = regexp.MustCompile(`\[(.*?)\]`)

// Summarize asks the model to classify a transcript into the strict
// bracketed list format and parses the reply.
func Summarize(ctx context.Context, model Completer, transcript string) (Incident, error) {
	reply, err := model.Complete(ctx, llm.DispatchPrompt(transcript))
	if err != nil {
		return Incident{}, fmt.Errorf("summarize: %w", err)
	}
	return parseIncident(reply)
}

// parseIncident extracts the first bracketed list from the reply. Expected
// shape: [summary, ambulance-clause, fire-clause,
// "Number of injured people: N", "Number of dead people: N"].
// The four trailing fields have fixed wording, so they are taken from the
// right; any extra commas belong to the free-text summary.
func parseIncident(reply string) (Incident, error) {
	m := bracketRe.FindStringSubmatch(reply)
	if m == nil {
		return Incident{}, ErrParse
	}
	parts := strings.Split(m[1], ",")
	if len(parts) < 5 {
		return Incident{}, ErrParse
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(strings.Trim(strings.TrimSpace(parts[i]), `"`))
	}
	n := len(parts)
	return Incident{
		Summary:    strings.Join(parts[:n-4], ", "),
		Ambulance:  parts[n-4],
		FireEngine: parts[n-3],
		Injured:    afterColon(parts[n-2]),
		Dead:       afterColon(parts[n-1]),
	}, nil
}

func afterColon(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return strings.TrimSpace(s)
}
