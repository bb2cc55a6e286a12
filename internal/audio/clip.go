package audio

import "errors"

// ErrDevice indicates the audio input or output device is unavailable.
// Device failures are fatal to the call; there is no recovery path.
var ErrDevice = errors.New("audio device unavailable")

// Clip is one finished caller utterance: mono float32 samples at a fixed rate.
// A Clip is immutable once returned by Capture.
type Clip struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}
