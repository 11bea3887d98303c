package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultAPIURL is the story service used when nothing is configured
	DefaultAPIURL      = "http://googleml.kro.kr:8000"
	DefaultHTTPTimeout = 2 * time.Minute
	DefaultLocale      = "en"
	DefaultNarrator    = "remote"
	DefaultCaptioner   = "remote"
)

// Config holds the client settings resolved from the environment
type Config struct {
	APIURL       string
	HTTPTimeout  time.Duration
	SettingsPath string
	Locale       string
	Narrator     string
	Model        string
	Captioner    string
	CaptionModel string
}

// Load reads the environment. A .env file, if any, has already been applied
// by the root command.
func Load() Config {
	cfg := Config{
		APIURL:       firstEnv(DefaultAPIURL, "MOMENT4U_API_URL", "REACT_APP_API_URL"),
		HTTPTimeout:  DefaultHTTPTimeout,
		SettingsPath: firstEnv(defaultSettingsPath(), "MOMENT4U_SETTINGS_PATH"),
		Locale:       firstEnv(DefaultLocale, "MOMENT4U_LOCALE"),
		Narrator:     firstEnv(DefaultNarrator, "MOMENT4U_NARRATOR"),
		Captioner:    firstEnv(DefaultCaptioner, "MOMENT4U_CAPTIONER"),
	}

	if v := os.Getenv("MOMENT4U_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("Ignoring invalid MOMENT4U_HTTP_TIMEOUT", "value", v, "err", err)
		} else {
			cfg.HTTPTimeout = d
		}
	}

	cfg.Model = DefaultModel(cfg.Narrator)
	cfg.CaptionModel = firstEnv(DefaultCaptionModel(cfg.Captioner), "MOMENT4U_CAPTION_MODEL")
	return cfg
}

// DefaultCaptionModel returns the vision model used by a captioner
func DefaultCaptionModel(captioner string) string {
	switch captioner {
	case "gemini":
		return "gemini-1.5-flash"
	case "ollama":
		return "llava"
	case "openai":
		return "gpt-4o-mini"
	default:
		return ""
	}
}

// DefaultModel returns the model for a narrator, honoring the provider's
// model variable
func DefaultModel(narrator string) string {
	switch narrator {
	case "gemini":
		return firstEnv("gemini-1.5-flash", "GEMINI_MODEL")
	case "ollama":
		return firstEnv("llama3.2", "OLLAMA_MODEL")
	case "openai":
		return firstEnv("gpt-4o-mini", "OPENAI_MODEL")
	default:
		return ""
	}
}

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "moment4u", "settings.yaml")
}

func firstEnv(fallback string, keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return fallback
}
