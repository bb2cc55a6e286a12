package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	speakrest "github.com/deepgram/deepgram-go-sdk/pkg/api/speak/v1/rest"
	clientinterfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces/v1"
	speak "github.com/deepgram/deepgram-go-sdk/pkg/client/speak"
)

// DeepgramClient is the fallback synthesis engine. Aura voices are
// English-only, so the language tag is ignored; the language map should
// route non-English calls to a multilingual engine instead.
type DeepgramClient struct {
	apiKey string
	model  string
	outDir string
}

func NewDeepgramClient(apiKey, model, outDir string) *DeepgramClient {
	if model == "" {
		model = "aura-asteria-en"
	}
	return &DeepgramClient{apiKey: apiKey, model: model, outDir: outDir}
}

// Synthesize renders text to an mp3 artifact and returns its path.
func (d *DeepgramClient) Synthesize(ctx context.Context, text, _ string) (string, error) {
	if d.apiKey == "" {
		return "", fmt.Errorf("deepgram: api key missing")
	}

	if d.outDir != "" {
		if err := os.MkdirAll(d.outDir, 0o755); err != nil {
			return "", fmt.Errorf("artifact dir: %w", err)
		}
	}
	path := filepath.Join(d.outDir, fmt.Sprintf("reply_%d.mp3", time.Now().UnixMilli()))

	client := speak.NewREST(d.apiKey, &clientinterfaces.ClientOptions{})
	dg := speakrest.New(client)
	options := &clientinterfaces.SpeakOptions{Model: d.model}

	if _, err := dg.ToSave(ctx, path, text, options); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("deepgram speak: %w", err)
	}
	return path, nil
}
