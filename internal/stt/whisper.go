package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/chanuu123/Dial-100-Automation/internal/audio"
	"github.com/chanuu123/Dial-100-Automation/internal/call"
)

// WhisperClient talks to a local whisper daemon exposing the OpenAI-style
// /v1/audio/transcriptions endpoint (whisper.cpp server, faster-whisper).
type WhisperClient struct {
	HTTPClient *http.Client
	BaseURL    string
	Model      string
	// DefaultLanguage is reported when the engine detects none.
	DefaultLanguage string
}

func NewWhisperClient(baseURL, defaultLanguage string) *WhisperClient {
	return &WhisperClient{
		HTTPClient:      &http.Client{Timeout: 60 * time.Second},
		BaseURL:         strings.TrimRight(baseURL, "/"),
		Model:           "whisper-1",
		DefaultLanguage: defaultLanguage,
	}
}

type transcriptionResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Transcribe uploads the clip as WAV and returns trimmed text plus the
// detected language. Engine failures wrap call.ErrTranscription so the
// orchestrator can degrade them to an empty transcription.
func (w *WhisperClient) Transcribe(ctx context.Context, clip audio.Clip) (call.Transcription, error) {
	tmp, err := os.CreateTemp("", "clip-*.wav")
	if err != nil {
		return call.Transcription{}, fmt.Errorf("%w: temp wav: %v", call.ErrTranscription, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if err := audio.WriteWAV(tmpPath, clip); err != nil {
		return call.Transcription{}, fmt.Errorf("%w: %v", call.ErrTranscription, err)
	}

	var b bytes.Buffer
	mw := multipart.NewWriter(&b)
	fw, err := mw.CreateFormFile("file", "clip.wav")
	if err != nil {
		return call.Transcription{}, fmt.Errorf("%w: create form file: %v", call.ErrTranscription, err)
	}
	fd, err := os.Open(tmpPath)
	if err != nil {
		return call.Transcription{}, fmt.Errorf("%w: open %s: %v", call.ErrTranscription, tmpPath, err)
	}
	defer fd.Close()
	if _, err := io.Copy(fw, fd); err != nil {
		return call.Transcription{}, fmt.Errorf("%w: copy audio: %v", call.ErrTranscription, err)
	}
	_ = mw.WriteField("model", w.Model)
	_ = mw.WriteField("response_format", "verbose_json")
	if err := mw.Close(); err != nil {
		return call.Transcription{}, fmt.Errorf("%w: close multipart: %v", call.ErrTranscription, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.BaseURL+"/v1/audio/transcriptions", &b)
	if err != nil {
		return call.Transcription{}, fmt.Errorf("%w: %v", call.ErrTranscription, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return call.Transcription{}, fmt.Errorf("%w: %v", call.ErrTranscription, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return call.Transcription{}, fmt.Errorf("%w: whisper %s: %s", call.ErrTranscription, resp.Status, strings.TrimSpace(string(body)))
	}

	var out transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return call.Transcription{}, fmt.Errorf("%w: decode: %v", call.ErrTranscription, err)
	}

	lang := strings.TrimSpace(out.Language)
	if lang == "" {
		lang = w.DefaultLanguage
	}
	return call.Transcription{Text: strings.TrimSpace(out.Text), Language: lang}, nil
}
