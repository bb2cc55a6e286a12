package playback

import (
	"context"
	"log"
	"os"
	"time"
)

// Synthesizer renders text to a transient audio artifact.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) (string, error)
}

// FilePlayer plays an artifact to completion.
type FilePlayer interface {
	Play(path string) error
}

// Output implements call.Speaker: synthesize, play to completion, delete the
// artifact. Deletion is retried once after a short delay in case the
// playback subsystem still holds the file right after stop; a second
// failure is logged, not fatal.
type Output struct {
	synth      Synthesizer
	player     FilePlayer
	retryDelay time.Duration
}

func NewOutput(synth Synthesizer, player FilePlayer) *Output {
	return &Output{synth: synth, player: player, retryDelay: 500 * time.Millisecond}
}

func (o *Output) Speak(ctx context.Context, text, language string) error {
	path, err := o.synth.Synthesize(ctx, text, language)
	if err != nil {
		return err
	}

	playErr := o.player.Play(path)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		time.Sleep(o.retryDelay)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("playback: could not remove artifact %s: %v", path, err)
		}
	}
	return playErr
}
