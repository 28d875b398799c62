package main

import (
	"testing"

	"github.com/pathforge/pathforge/internal/platform/config"
)

func TestBuildRouter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AIConfig
		wantErr bool
	}{
		{
			name:    "no providers",
			cfg:     config.AIConfig{},
			wantErr: true,
		},
		{
			name: "openai only",
			cfg: config.AIConfig{
				OpenAI: config.OpenAIConfig{APIKey: "sk-test"},
			},
		},
		{
			name: "ollama only",
			cfg: config.AIConfig{
				Ollama: config.OllamaConfig{Enabled: true, URL: "http://localhost:11434"},
			},
		},
		{
			name: "all providers",
			cfg: config.AIConfig{
				OpenAI:    config.OpenAIConfig{APIKey: "sk-test"},
				Anthropic: config.AnthropicConfig{APIKey: "sk-ant-test"},
				DeepSeek:  config.DeepSeekConfig{APIKey: "sk-ds-test"},
				Ollama:    config.OllamaConfig{Enabled: true, URL: "http://localhost:11434"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, err := buildRouter(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildRouter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !router.HasProvider() {
				t.Error("router should have at least one provider")
			}
		})
	}
}
