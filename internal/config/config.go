// Package config assembles the daemon's settings from the environment.
// A .env file is folded in first, so a checkout can carry its keys in
// one place; real environment variables win.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config carries every external knob. Only the OpenAI key is required;
// everything else has a working default or disables its feature when
// empty.
type Config struct {
	OpenAIKey     string `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	ChatModel     string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`

	WeatherKey  string `envconfig:"OPENWEATHER_API_KEY"`
	DefaultCity string `envconfig:"DEFAULT_CITY" default:"Guntur"`

	WakeWord     string `envconfig:"WAKE_WORD" default:"friday"`
	WhisperModel string `envconfig:"WHISPER_MODEL" default:"third_party/whisper.cpp/models/ggml-base.en.bin"`

	EmbeddingsURL   string `envconfig:"EMBEDDINGS_URL"`
	EmbeddingsModel string `envconfig:"EMBEDDINGS_MODEL" default:"text-embedding-3-small"`
	KnowledgeDir    string `envconfig:"KNOWLEDGE_DIR"`

	ProxyAddr string `envconfig:"SOCKS_PROXY"` // host:port, empty means direct

	SocketPath  string `envconfig:"SOCKET_PATH" default:"/tmp/friday.sock"`
	ConsoleAddr string `envconfig:"CONSOLE_ADDR" default:"127.0.0.1:8926"`

	EarconPath string `envconfig:"EARCON_PATH" default:"beep.mp3"`
}

// Load reads envFile when present and then decodes the environment.
func Load(envFile string) (Config, error) {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load(envFile)

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return c, nil
}
