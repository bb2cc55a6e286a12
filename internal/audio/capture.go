package audio

import (
	"context"
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"
)

// CaptureConfig tunes the endpointed capture loop.
type CaptureConfig struct {
	SampleRate       int
	FrameSize        int
	SilenceThreshold float64
	// MaxSilence is the pause length that marks end-of-utterance.
	MaxSilence time.Duration
	// MaxUtterance bounds a single capture regardless of ongoing speech.
	// Zero disables the cutoff.
	MaxUtterance time.Duration
}

func (c CaptureConfig) withDefaults() CaptureConfig {
	if c.SampleRate == 0 {
		c.SampleRate = 32000
	}
	if c.FrameSize == 0 {
		c.FrameSize = 1024
	}
	if c.SilenceThreshold == 0 {
		c.SilenceThreshold = 0.01
	}
	if c.MaxSilence == 0 {
		c.MaxSilence = time.Second
	}
	return c
}

// endpointer decides, frame by frame, when an utterance has ended.
// It is kept free of device I/O so the decision logic is testable.
type endpointer struct {
	threshold       float64
	maxSilentFrames int
	maxFrames       int

	silentFrames int
	totalFrames  int
}

func newEndpointer(cfg CaptureConfig) *endpointer {
	maxSilent := int(cfg.MaxSilence.Seconds() * float64(cfg.SampleRate) / float64(cfg.FrameSize))
	maxTotal := 0
	if cfg.MaxUtterance > 0 {
		maxTotal = int(cfg.MaxUtterance.Seconds() * float64(cfg.SampleRate) / float64(cfg.FrameSize))
		if maxTotal < 1 {
			maxTotal = 1
		}
	}
	return &endpointer{
		threshold:       cfg.SilenceThreshold,
		maxSilentFrames: maxSilent,
		maxFrames:       maxTotal,
	}
}

// observe consumes one frame and reports whether capture should stop.
func (e *endpointer) observe(frame []float32) bool {
	e.totalFrames++
	if meanAbs(frame) < e.threshold {
		e.silentFrames++
	} else {
		e.silentFrames = 0
	}
	if e.silentFrames > e.maxSilentFrames {
		return true
	}
	return e.maxFrames > 0 && e.totalFrames >= e.maxFrames
}

// meanAbs is the volume estimate: mean absolute sample amplitude.
func meanAbs(frame []float32) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		if s < 0 {
			sum -= float64(s)
		} else {
			sum += float64(s)
		}
	}
	return sum / float64(len(frame))
}

// Microphone captures endpointed utterances from the default input device.
// The host must call portaudio.Initialize before use.
type Microphone struct {
	cfg CaptureConfig
}

func NewMicrophone(cfg CaptureConfig) *Microphone {
	return &Microphone{cfg: cfg.withDefaults()}
}

// Capture blocks reading mono frames until a long-enough pause (or the max
// utterance cutoff) and returns the accumulated clip. The clip always holds
// at least one frame when the error is nil.
func (m *Microphone) Capture(ctx context.Context) (Clip, error) {
	frame := make([]float32, m.cfg.FrameSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.cfg.SampleRate), m.cfg.FrameSize, frame)
	if err != nil {
		return Clip{}, fmt.Errorf("%w: open input stream: %v", ErrDevice, err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return Clip{}, fmt.Errorf("%w: start input stream: %v", ErrDevice, err)
	}
	defer func() { _ = stream.Stop() }()

	ep := newEndpointer(m.cfg)
	var samples []float32
	for {
		if err := ctx.Err(); err != nil {
			return Clip{}, err
		}
		if err := stream.Read(); err != nil {
			return Clip{}, fmt.Errorf("%w: read frame: %v", ErrDevice, err)
		}
		samples = append(samples, frame...)
		if ep.observe(frame) {
			break
		}
	}
	return Clip{Samples: samples, SampleRate: m.cfg.SampleRate}, nil
}
