package call

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chanuu123/Dial-100-Automation/internal/audio"
)

// Role attributes a conversational turn to one side of the call.
type Role string

const (
	RoleCaller Role = "Caller"
	RoleAgent  Role = "Agent"
)

// Turn is one conversational entry. Immutable once appended.
type Turn struct {
	Role Role
	Text string
}

// Session is the full mutable state of one call from greeting to closing.
// The history strictly alternates Caller/Agent starting with Caller; the
// greeting is spoken but never recorded.
type Session struct {
	ID        string
	StartedAt time.Time
	Language  string
	History   []Turn
	Done      bool
}

func NewSession(language string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Language:  language,
	}
}

func (s *Session) AppendCaller(text string) {
	s.History = append(s.History, Turn{Role: RoleCaller, Text: text})
}

func (s *Session) AppendAgent(text string) {
	s.History = append(s.History, Turn{Role: RoleAgent, Text: text})
}

// Transcription is a transcription engine result.
type Transcription struct {
	Text     string
	Language string
}

// Capturer records one endpointed caller utterance.
type Capturer interface {
	Capture(ctx context.Context) (audio.Clip, error)
}

// Transcriber converts a finished clip to text plus a detected language.
type Transcriber interface {
	Transcribe(ctx context.Context, clip audio.Clip) (Transcription, error)
}

// Responder generates the next agent utterance from the full history.
type Responder interface {
	Generate(ctx context.Context, history []Turn) (string, error)
}

// Speaker synthesizes text in the given language and plays it to completion.
type Speaker interface {
	Speak(ctx context.Context, text, language string) error
}

// TranscriptStore persists a finished session and returns the report path.
type TranscriptStore interface {
	Save(s *Session) (string, error)
}
