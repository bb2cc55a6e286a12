package playback

import "testing"

func TestCheckSampleRate(t *testing.T) {
	if err := checkSampleRate(playbackSampleRate); err != nil {
		t.Fatalf("matching rate rejected: %v", err)
	}
	for _, rate := range []int{22050, 24000, 48000} {
		if err := checkSampleRate(rate); err == nil {
			t.Errorf("rate %d accepted; would play pitch-shifted", rate)
		}
	}
}
