package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Capture tunes the endpointed capture loop. Values mirror the YAML file.
type Capture struct {
	SampleRate          int     `yaml:"sample_rate"`
	FrameSize           int     `yaml:"frame_size"`
	SilenceThreshold    float64 `yaml:"silence_threshold"`
	MaxSilenceSeconds   float64 `yaml:"max_silence_seconds"`
	MaxUtteranceSeconds float64 `yaml:"max_utterance_seconds"`
}

func (c Capture) MaxSilence() time.Duration {
	return time.Duration(c.MaxSilenceSeconds * float64(time.Second))
}

func (c Capture) MaxUtterance() time.Duration {
	return time.Duration(c.MaxUtteranceSeconds * float64(time.Second))
}

// Config holds application configuration.
type Config struct {
	HTTPAddress string

	WhisperURL  string
	OllamaURL   string
	OllamaModel string

	ElevenLabsKey     string
	ElevenLabsVoiceID string
	DeepgramKey       string

	ReportsDir    string
	RecordingsDir string

	DefaultLanguage string
	// Languages maps detected-language codes to supported synthesis codes.
	Languages map[string]string `yaml:"languages"`
	Capture   Capture           `yaml:"capture"`
}

type tuningFile struct {
	Capture   Capture           `yaml:"capture"`
	Languages map[string]string `yaml:"languages"`
}

// Load reads environment variables (plus an optional tuning YAML named by
// INTAKE_CONFIG) and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	cfg := Config{
		HTTPAddress:     envOr("HTTP_ADDRESS", ":8000"),
		WhisperURL:      envOr("WHISPER_URL", "http://localhost:9000"),
		OllamaURL:       envOr("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:     envOr("OLLAMA_MODEL", "gemma3:12b"),
		ReportsDir:      envOr("REPORTS_DIR", "incident_reports"),
		RecordingsDir:   envOr("RECORDINGS_DIR", "recordings"),
		DefaultLanguage: envOr("DEFAULT_LANGUAGE", "en"),
		Languages:       map[string]string{"en": "en", "hi": "hi"},
		Capture: Capture{
			SampleRate:          32000,
			FrameSize:           1024,
			SilenceThreshold:    0.01,
			MaxSilenceSeconds:   1.0,
			MaxUtteranceSeconds: 60,
		},
	}

	cfg.ElevenLabsKey = os.Getenv("ELEVENLABS_API_KEY")
	cfg.ElevenLabsVoiceID = os.Getenv("ELEVENLABS_VOICE_ID")
	cfg.DeepgramKey = os.Getenv("DEEPGRAM_API_KEY")
	if cfg.ElevenLabsKey == "" && cfg.DeepgramKey == "" {
		log.Println("Warning: neither ELEVENLABS_API_KEY nor DEEPGRAM_API_KEY set - speech output will not work")
	}

	if v := os.Getenv("SILENCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Capture.SilenceThreshold = f
		} else {
			log.Printf("Warning: invalid SILENCE_THRESHOLD %q ignored", v)
		}
	}

	if path := os.Getenv("INTAKE_CONFIG"); path != "" {
		if err := cfg.applyTuning(path); err != nil {
			log.Printf("Warning: tuning file %s not applied: %v", path, err)
		}
	}

	log.Printf("config: whisper=%s ollama=%s model=%s", cfg.WhisperURL, cfg.OllamaURL, cfg.OllamaModel)
	return cfg
}

func (c *Config) applyTuning(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var t tuningFile
	if err := yaml.NewDecoder(f).Decode(&t); err != nil {
		return err
	}
	if t.Capture.SampleRate > 0 {
		c.Capture.SampleRate = t.Capture.SampleRate
	}
	if t.Capture.FrameSize > 0 {
		c.Capture.FrameSize = t.Capture.FrameSize
	}
	if t.Capture.SilenceThreshold > 0 {
		c.Capture.SilenceThreshold = t.Capture.SilenceThreshold
	}
	if t.Capture.MaxSilenceSeconds > 0 {
		c.Capture.MaxSilenceSeconds = t.Capture.MaxSilenceSeconds
	}
	if t.Capture.MaxUtteranceSeconds > 0 {
		c.Capture.MaxUtteranceSeconds = t.Capture.MaxUtteranceSeconds
	}
	if len(t.Languages) > 0 {
		c.Languages = t.Languages
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
