package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// ElevenLabsClient synthesizes speech via the ElevenLabs HTTP API.
// The multilingual flash model honors an explicit language code, which is
// what lets agent replies follow the caller's language.
type ElevenLabsClient struct {
	HTTPClient *http.Client
	APIKey     string
	VoiceID    string
	// OutDir receives the transient audio artifacts.
	OutDir string
}

func NewElevenLabsClient(apiKey, voiceID, outDir string) *ElevenLabsClient {
	return &ElevenLabsClient{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		APIKey:     apiKey,
		VoiceID:    voiceID,
		OutDir:     outDir,
	}
}

type synthesisRequest struct {
	Text         string `json:"text"`
	ModelID      string `json:"model_id"`
	LanguageCode string `json:"language_code,omitempty"`
}

// Synthesize renders text to an mp3 artifact and returns its path. The
// artifact name carries a millisecond timestamp to avoid collisions across
// rapid turns; the caller is responsible for deleting it after playback.
func (e *ElevenLabsClient) Synthesize(ctx context.Context, text, language string) (string, error) {
	if e.APIKey == "" || e.VoiceID == "" {
		return "", fmt.Errorf("elevenlabs: api key or voice id missing")
	}

	u := url.URL{
		Scheme: "https",
		Host:   "api.elevenlabs.io",
		Path:   "/v1/text-to-speech/" + e.VoiceID,
	}
	q := u.Query()
	q.Set("output_format", "mp3_44100_128")
	u.RawQuery = q.Encode()

	body, _ := json.Marshal(synthesisRequest{
		Text:         text,
		ModelID:      "eleven_flash_v2_5",
		LanguageCode: language,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("xi-api-key", e.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("elevenlabs status=%d body=%s", resp.StatusCode, string(b))
	}

	if e.OutDir != "" {
		if err := os.MkdirAll(e.OutDir, 0o755); err != nil {
			return "", fmt.Errorf("artifact dir: %w", err)
		}
	}
	path := filepath.Join(e.OutDir, fmt.Sprintf("reply_%d.mp3", time.Now().UnixMilli()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
