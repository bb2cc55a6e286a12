package call

import "errors"

// Common errors for call adapters.
var (
	// ErrTranscription marks a transcription engine failure. The orchestrator
	// degrades it to an empty transcription and re-prompts the caller.
	ErrTranscription = errors.New("transcription failed")
	// ErrUpstream marks a dialogue agent failure. It aborts the call.
	ErrUpstream = errors.New("dialogue agent unavailable")
)
