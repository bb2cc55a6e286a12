package playback

import (
	"fmt"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"
	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/chanuu123/Dial-100-Automation/internal/audio"
)

// playbackSampleRate matches the mp3 artifacts the synthesis engines emit.
const playbackSampleRate = 44100

// Player renders mp3 artifacts on a speaker. It owns the oto context
// explicitly so multiple sessions never contend on an implicit process-wide
// device handle.
type Player struct {
	ctx *oto.Context
}

// NewPlayer acquires the output device. Failure is fatal to the call.
func NewPlayer() (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   playbackSampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: open output device: %v", audio.ErrDevice, err)
	}
	<-ready
	return &Player{ctx: ctx}, nil
}

// checkSampleRate rejects artifacts the fixed-rate output context would
// play pitch-shifted; the context cannot resample.
func checkSampleRate(rate int) error {
	if rate != playbackSampleRate {
		return fmt.Errorf("artifact sample rate %d Hz, output device runs at %d Hz", rate, playbackSampleRate)
	}
	return nil
}

// Play decodes the artifact and blocks until playback completes. This is
// the one deliberate synchronization point pacing the whole conversation.
func (p *Player) Play(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	if err := checkSampleRate(dec.SampleRate()); err != nil {
		return err
	}

	pl := p.ctx.NewPlayer(dec)
	pl.Play()
	for pl.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	if err := pl.Close(); err != nil {
		return fmt.Errorf("%w: close player: %v", audio.ErrDevice, err)
	}
	return nil
}
