package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gordonklaus/portaudio"

	"github.com/chanuu123/Dial-100-Automation/internal/audio"
	"github.com/chanuu123/Dial-100-Automation/internal/call"
	"github.com/chanuu123/Dial-100-Automation/internal/config"
	"github.com/chanuu123/Dial-100-Automation/internal/llm"
	"github.com/chanuu123/Dial-100-Automation/internal/playback"
	"github.com/chanuu123/Dial-100-Automation/internal/report"
	"github.com/chanuu123/Dial-100-Automation/internal/stt"
	"github.com/chanuu123/Dial-100-Automation/internal/tts"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.SetPrefix("[intake] ")

	cfg := config.Load()

	if err := portaudio.Initialize(); err != nil {
		log.Fatalf("portaudio: %v", err)
	}
	defer func() { _ = portaudio.Terminate() }()

	player, err := playback.NewPlayer()
	if err != nil {
		log.Fatalf("playback: %v", err)
	}

	synth, err := newSynthesizer(cfg)
	if err != nil {
		log.Fatal(err)
	}

	mic := audio.NewMicrophone(audio.CaptureConfig{
		SampleRate:       cfg.Capture.SampleRate,
		FrameSize:        cfg.Capture.FrameSize,
		SilenceThreshold: cfg.Capture.SilenceThreshold,
		MaxSilence:       cfg.Capture.MaxSilence(),
		MaxUtterance:     cfg.Capture.MaxUtterance(),
	})
	recorder := audio.NewRecorder(cfg.RecordingsDir)

	orch := call.NewOrchestrator(
		auditedCapturer{mic: mic, rec: recorder},
		stt.NewWhisperClient(cfg.WhisperURL, cfg.DefaultLanguage),
		llm.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel),
		playback.NewOutput(synth, player),
		report.NewStore(cfg.ReportsDir),
		call.NewLanguageMap(cfg.Languages, cfg.DefaultLanguage),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, err := orch.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			log.Printf("stopped: %v", ctx.Err())
			return
		}
		log.Fatalf("call failed: %v", err)
	}
	log.Printf("incident report: %s", path)
}

func newSynthesizer(cfg config.Config) (playback.Synthesizer, error) {
	if cfg.ElevenLabsKey != "" {
		return tts.NewElevenLabsClient(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID, os.TempDir()), nil
	}
	log.Println("elevenlabs not configured; falling back to deepgram (English only)")
	return tts.NewDeepgramClient(cfg.DeepgramKey, "", os.TempDir()), nil
}

// auditedCapturer retains each finished clip on disk before handing it to
// the orchestrator. A failed audit write is logged, never fatal.
type auditedCapturer struct {
	mic *audio.Microphone
	rec *audio.Recorder
}

func (a auditedCapturer) Capture(ctx context.Context) (audio.Clip, error) {
	clip, err := a.mic.Capture(ctx)
	if err != nil {
		return audio.Clip{}, err
	}
	if path, err := a.rec.Save(clip); err != nil {
		log.Printf("recording not saved: %v", err)
	} else {
		log.Printf("recording saved: %s", path)
	}
	return clip, nil
}
