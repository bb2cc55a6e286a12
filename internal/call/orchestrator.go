package call

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// ClosingPhrase ends the call when it appears (case-insensitively) in an
// agent reply. The agent is instructed to say it once all facts are
// collected, so completion is asserted by the agent, not inferred here.
const ClosingPhrase = "help is on the way"

const (
	greetingText = "Hello, this is the emergency helpline. Please tell me what happened."
	repromptText = "I did not catch that. Please repeat."
	closingText  = "Thank you for calling. Help is on the way."
)

// Orchestrator drives one call: greet, loop capture → transcribe → generate
// → speak, detect the closing phrase, persist the transcript. Everything
// runs synchronously; the conversation is paced by playback.
type Orchestrator struct {
	mic       Capturer
	stt       Transcriber
	agent     Responder
	voice     Speaker
	store     TranscriptStore
	languages LanguageMap
}

func NewOrchestrator(mic Capturer, stt Transcriber, agent Responder, voice Speaker, store TranscriptStore, languages LanguageMap) *Orchestrator {
	return &Orchestrator{mic: mic, stt: stt, agent: agent, voice: voice, store: store, languages: languages}
}

// Run executes the call to completion and returns the saved report path.
func (o *Orchestrator) Run(ctx context.Context) (string, error) {
	sess := NewSession(o.languages.Fallback())
	log.Printf("call %s: started", sess.ID)

	if err := o.voice.Speak(ctx, greetingText, o.languages.Fallback()); err != nil {
		return "", fmt.Errorf("greeting: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		clip, err := o.mic.Capture(ctx)
		if err != nil {
			return "", fmt.Errorf("capture: %w", err)
		}
		log.Printf("call %s: captured %.2fs of audio", sess.ID, clip.Duration())

		result, err := o.stt.Transcribe(ctx, clip)
		if err != nil {
			if !errors.Is(err, ErrTranscription) {
				return "", err
			}
			// Engine failure degrades to "nothing heard": re-prompt below.
			log.Printf("call %s: %v", sess.ID, err)
			result = Transcription{}
		}

		text := strings.TrimSpace(result.Text)
		if text == "" {
			// No usable speech: re-prompt in the last known language without
			// recording a turn or touching the remembered language.
			if err := o.voice.Speak(ctx, repromptText, o.languages.Resolve(sess.Language)); err != nil {
				return "", fmt.Errorf("re-prompt: %w", err)
			}
			continue
		}

		log.Printf("call %s: caller: %s", sess.ID, text)
		sess.AppendCaller(text)
		if result.Language != "" {
			sess.Language = result.Language
		}

		reply, err := o.agent.Generate(ctx, sess.History)
		if err != nil {
			return "", fmt.Errorf("generate reply: %w", err)
		}
		reply = strings.TrimSpace(reply)
		log.Printf("call %s: agent: %s", sess.ID, reply)
		sess.AppendAgent(reply)

		if err := o.voice.Speak(ctx, reply, o.languages.Resolve(sess.Language)); err != nil {
			return "", fmt.Errorf("speak reply: %w", err)
		}

		if strings.Contains(strings.ToLower(reply), ClosingPhrase) {
			sess.Done = true
			break
		}
	}

	if err := o.voice.Speak(ctx, closingText, o.languages.Fallback()); err != nil {
		return "", fmt.Errorf("closing: %w", err)
	}

	path, err := o.store.Save(sess)
	if err != nil {
		return "", fmt.Errorf("save transcript: %w", err)
	}
	log.Printf("call %s: transcript saved to %s", sess.ID, path)
	return path, nil
}
