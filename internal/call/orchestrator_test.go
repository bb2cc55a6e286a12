package call

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/chanuu123/Dial-100-Automation/internal/audio"
)

type fakeMic struct {
	clips int
}

func (f *fakeMic) Capture(ctx context.Context) (audio.Clip, error) {
	f.clips++
	return audio.Clip{Samples: make([]float32, 1024), SampleRate: 32000}, nil
}

type fakeSTT struct {
	results []Transcription
	errs    []error
	calls   int
}

func (f *fakeSTT) Transcribe(ctx context.Context, clip audio.Clip) (Transcription, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if i < len(f.results) {
		return f.results[i], err
	}
	return Transcription{}, err
}

type fakeAgent struct {
	replies []string
	err     error
	calls   int
	seen    [][]Turn
}

func (f *fakeAgent) Generate(ctx context.Context, history []Turn) (string, error) {
	cp := make([]Turn, len(history))
	copy(cp, history)
	f.seen = append(f.seen, cp)
	if f.err != nil {
		return "", f.err
	}
	i := f.calls
	f.calls++
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "Anything else?", nil
}

type spoken struct {
	text string
	lang string
}

type fakeVoice struct {
	spoken []spoken
	err    error
}

func (f *fakeVoice) Speak(ctx context.Context, text, language string) error {
	if f.err != nil {
		return f.err
	}
	f.spoken = append(f.spoken, spoken{text: text, lang: language})
	return nil
}

type fakeStore struct {
	saves    int
	lastSess *Session
}

func (f *fakeStore) Save(s *Session) (string, error) {
	f.saves++
	f.lastSess = s
	return "incident_reports/test.txt", nil
}

func defaultLanguages() LanguageMap {
	return NewLanguageMap(map[string]string{"en": "en", "hi": "hi"}, "en")
}

func newTestOrchestrator(sttF *fakeSTT, agent *fakeAgent, voice *fakeVoice, store *fakeStore) *Orchestrator {
	return NewOrchestrator(&fakeMic{}, sttF, agent, voice, store, defaultLanguages())
}

func TestRun_FireScenario_TwoAlternatingTurns(t *testing.T) {
	sttF := &fakeSTT{results: []Transcription{{Text: "There's a fire at Main Street", Language: "en"}}}
	agent := &fakeAgent{replies: []string{"Is anyone injured? Help is on the way."}}
	voice := &fakeVoice{}
	store := &fakeStore{}

	if _, err := newTestOrchestrator(sttF, agent, voice, store).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	hist := store.lastSess.History
	if len(hist) != 2 {
		t.Fatalf("history length: got %d want 2", len(hist))
	}
	if hist[0].Role != RoleCaller || hist[1].Role != RoleAgent {
		t.Fatalf("roles: got [%s %s] want [Caller Agent]", hist[0].Role, hist[1].Role)
	}
	if hist[0].Text != "There's a fire at Main Street" {
		t.Fatalf("caller text: %q", hist[0].Text)
	}
}

func TestRun_HistoryStrictlyAlternates(t *testing.T) {
	sttF := &fakeSTT{results: []Transcription{
		{Text: "A truck crashed", Language: "en"},
		{Text: "Near the bridge", Language: "en"},
		{Text: "Two people hurt", Language: "en"},
	}}
	agent := &fakeAgent{replies: []string{
		"Where exactly?",
		"How many injured?",
		"Noted. Help is on the way.",
	}}
	voice := &fakeVoice{}
	store := &fakeStore{}

	if _, err := newTestOrchestrator(sttF, agent, voice, store).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	hist := store.lastSess.History
	if len(hist) != 6 {
		t.Fatalf("history length: got %d want 6", len(hist))
	}
	for i, turn := range hist {
		want := RoleCaller
		if i%2 == 1 {
			want = RoleAgent
		}
		if turn.Role != want {
			t.Fatalf("turn %d: role %s want %s", i, turn.Role, want)
		}
	}
}

func TestRun_SilenceReprompts_NoTurnNoLanguageChange(t *testing.T) {
	// first capture transcribes to nothing, second ends the call
	sttF := &fakeSTT{results: []Transcription{
		{Text: "   ", Language: "hi"},
		{Text: "fire", Language: "en"},
	}}
	agent := &fakeAgent{replies: []string{"Help is on the way."}}
	voice := &fakeVoice{}
	store := &fakeStore{}

	if _, err := newTestOrchestrator(sttF, agent, voice, store).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	// greeting, re-prompt, reply, closing
	if len(voice.spoken) != 4 {
		t.Fatalf("spoken count: got %d want 4", len(voice.spoken))
	}
	rp := voice.spoken[1]
	if rp.text != repromptText {
		t.Fatalf("expected re-prompt, got %q", rp.text)
	}
	// language must still be the baseline: the empty turn may not update it
	if rp.lang != "en" {
		t.Fatalf("re-prompt language: got %q want baseline en", rp.lang)
	}
	if len(store.lastSess.History) != 2 {
		t.Fatalf("history length: got %d want 2", len(store.lastSess.History))
	}
}

func TestRun_TranscriptionErrorDegradesToReprompt(t *testing.T) {
	sttF := &fakeSTT{
		results: []Transcription{{}, {Text: "crash", Language: "en"}},
		errs:    []error{fmt.Errorf("%w: engine down", ErrTranscription)},
	}
	agent := &fakeAgent{replies: []string{"Understood, help is on the way."}}
	voice := &fakeVoice{}
	store := &fakeStore{}

	if _, err := newTestOrchestrator(sttF, agent, voice, store).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(voice.spoken) < 2 || voice.spoken[1].text != repromptText {
		t.Fatal("expected re-prompt after transcription failure")
	}
	if store.saves != 1 {
		t.Fatalf("saves: got %d want 1", store.saves)
	}
}

func TestRun_TerminatesOnlyOnClosingPhrase(t *testing.T) {
	cases := []struct {
		reply string
		done  bool
	}{
		{"Help is on the WAY.", true},
		{"Stay calm, help is on the way now.", true},
		{"We will help you right away.", false},
		{"Help is on its way.", false},
	}
	for _, tc := range cases {
		replies := []string{tc.reply}
		texts := []Transcription{{Text: "fire", Language: "en"}}
		if !tc.done {
			// give the loop a terminating second exchange
			replies = append(replies, "Okay. Help is on the way.")
			texts = append(texts, Transcription{Text: "hurry", Language: "en"})
		}
		sttF := &fakeSTT{results: texts}
		agent := &fakeAgent{replies: replies}
		store := &fakeStore{}

		if _, err := newTestOrchestrator(sttF, agent, &fakeVoice{}, store).Run(context.Background()); err != nil {
			t.Fatalf("%q: run: %v", tc.reply, err)
		}
		wantTurns := 2
		if !tc.done {
			wantTurns = 4
		}
		if got := len(store.lastSess.History); got != wantTurns {
			t.Errorf("%q: history %d want %d", tc.reply, got, wantTurns)
		}
	}
}

func TestRun_FifthReplyTerminates_SavesExactlyOnce(t *testing.T) {
	var texts []Transcription
	var replies []string
	for i := 0; i < 4; i++ {
		texts = append(texts, Transcription{Text: fmt.Sprintf("detail %d", i), Language: "en"})
		replies = append(replies, "Tell me more.")
	}
	texts = append(texts, Transcription{Text: "that is all", Language: "en"})
	replies = append(replies, "Summary noted. Help is on the way.")

	sttF := &fakeSTT{results: texts}
	agent := &fakeAgent{replies: replies}
	voice := &fakeVoice{}
	store := &fakeStore{}

	if _, err := newTestOrchestrator(sttF, agent, voice, store).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if store.saves != 1 {
		t.Fatalf("saves: got %d want 1", store.saves)
	}
	last := voice.spoken[len(voice.spoken)-1]
	if last.text != closingText {
		t.Fatalf("expected fixed closing line last, got %q", last.text)
	}
	if len(store.lastSess.History) != 10 {
		t.Fatalf("history length: got %d want 10", len(store.lastSess.History))
	}
	if !store.lastSess.Done {
		t.Fatal("session not marked done")
	}
}

func TestRun_AgentErrorAbortsWithoutSave(t *testing.T) {
	sttF := &fakeSTT{results: []Transcription{{Text: "fire", Language: "en"}}}
	agent := &fakeAgent{err: fmt.Errorf("%w: timeout", ErrUpstream)}
	store := &fakeStore{}

	_, err := newTestOrchestrator(sttF, agent, &fakeVoice{}, store).Run(context.Background())
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if store.saves != 0 {
		t.Fatalf("saves: got %d want 0", store.saves)
	}
}

func TestRun_AgentSeesFullHistory(t *testing.T) {
	sttF := &fakeSTT{results: []Transcription{
		{Text: "fire", Language: "en"},
		{Text: "main street", Language: "en"},
	}}
	agent := &fakeAgent{replies: []string{"Where?", "Help is on the way."}}
	store := &fakeStore{}

	if _, err := newTestOrchestrator(sttF, agent, &fakeVoice{}, store).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(agent.seen) != 2 {
		t.Fatalf("agent calls: got %d want 2", len(agent.seen))
	}
	if len(agent.seen[0]) != 1 || len(agent.seen[1]) != 3 {
		t.Fatalf("history sizes: got %d,%d want 1,3", len(agent.seen[0]), len(agent.seen[1]))
	}
}

func TestRun_ReplySpokenInDetectedLanguage_UnknownFallsBack(t *testing.T) {
	sttF := &fakeSTT{results: []Transcription{
		{Text: "madad karo", Language: "hi"},
		{Text: "aag lagi hai", Language: "ur"},
	}}
	agent := &fakeAgent{replies: []string{"Kahan?", "Help is on the way."}}
	voice := &fakeVoice{}
	store := &fakeStore{}

	if _, err := newTestOrchestrator(sttF, agent, voice, store).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	// spoken: greeting(en), reply1(hi), reply2(fallback en), closing(en)
	if voice.spoken[1].lang != "hi" {
		t.Fatalf("first reply language: got %q want hi", voice.spoken[1].lang)
	}
	if voice.spoken[2].lang != "en" {
		t.Fatalf("unmapped language must fall back: got %q want en", voice.spoken[2].lang)
	}
}

func TestRun_GreetingSpokenFirstInBaseline(t *testing.T) {
	sttF := &fakeSTT{results: []Transcription{{Text: "fire", Language: "en"}}}
	agent := &fakeAgent{replies: []string{"Help is on the way."}}
	voice := &fakeVoice{}

	if _, err := newTestOrchestrator(sttF, agent, voice, &fakeStore{}).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	first := voice.spoken[0]
	if !strings.Contains(first.text, "emergency helpline") || first.lang != "en" {
		t.Fatalf("unexpected greeting: %+v", first)
	}
}

func TestRun_DeviceErrorIsFatal(t *testing.T) {
	mic := errMic{}
	orch := NewOrchestrator(mic, &fakeSTT{}, &fakeAgent{}, &fakeVoice{}, &fakeStore{}, defaultLanguages())
	_, err := orch.Run(context.Background())
	if !errors.Is(err, audio.ErrDevice) {
		t.Fatalf("expected device error, got %v", err)
	}
}

type errMic struct{}

func (errMic) Capture(ctx context.Context) (audio.Clip, error) {
	return audio.Clip{}, fmt.Errorf("%w: no input device", audio.ErrDevice)
}
