package stt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chanuu123/Dial-100-Automation/internal/audio"
	"github.com/chanuu123/Dial-100-Automation/internal/call"
)

func testClip() audio.Clip {
	return audio.Clip{Samples: make([]float32, 2048), SampleRate: 32000}
}

func TestTranscribe_TrimsTextAndKeepsLanguage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			t.Fatalf("multipart: %v", err)
		}
		if r.FormValue("response_format") != "verbose_json" {
			t.Errorf("response_format: %q", r.FormValue("response_format"))
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("file field: %v", err)
		}
		f.Close()
		if hdr.Filename != "clip.wav" {
			t.Errorf("filename: %s", hdr.Filename)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"text":     "  aag lagi hai  ",
			"language": "hi",
		})
	}))
	defer srv.Close()

	c := NewWhisperClient(srv.URL, "en")
	got, err := c.Transcribe(context.Background(), testClip())
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if got.Text != "aag lagi hai" {
		t.Errorf("text: %q", got.Text)
	}
	if got.Language != "hi" {
		t.Errorf("language: %q", got.Language)
	}
}

func TestTranscribe_MissingLanguageFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "hello"})
	}))
	defer srv.Close()

	c := NewWhisperClient(srv.URL, "en")
	got, err := c.Transcribe(context.Background(), testClip())
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if got.Language != "en" {
		t.Errorf("language: %q want baseline en", got.Language)
	}
}

func TestTranscribe_EngineFailureWrapsTranscriptionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewWhisperClient(srv.URL, "en")
	_, err := c.Transcribe(context.Background(), testClip())
	if !errors.Is(err, call.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
}

func TestTranscribe_UnreachableDaemonWrapsTranscriptionError(t *testing.T) {
	c := NewWhisperClient("http://127.0.0.1:1", "en")
	_, err := c.Transcribe(context.Background(), testClip())
	if !errors.Is(err, call.ErrTranscription) {
		t.Fatalf("expected ErrTranscription, got %v", err)
	}
}
