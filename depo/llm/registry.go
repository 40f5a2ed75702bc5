package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/deposition/depo/config"
)

// Pipeline stages a model can be bound to.
const (
	StageQuestion = "question"
	StageRefine   = "refine"
	StageReport   = "report"
	StageConclude = "conclude"
)

// StageClient binds a provider to one pipeline stage with its options
// fixed at construction. It exposes the narrow system+user call the
// interrogation stages consume.
type StageClient struct {
	provider Provider
	opts     []Option
}

// Generate renders one completion for a system and user prompt pair.
func (c *StageClient) Generate(ctx context.Context, system, user string) (string, error) {
	var history []Message
	if strings.TrimSpace(system) != "" {
		history = append(history, Message{Role: RoleSystem, Content: system})
	}
	history = append(history, Message{Role: RoleUser, Content: user})
	return c.provider.Chat(ctx, history, c.opts...)
}

// Registry resolves the client serving each pipeline stage. Stages with
// no explicit configuration fall back to the default client.
type Registry struct {
	clients  map[string]*StageClient
	fallback *StageClient
}

// NewRegistry builds stage clients from the models configuration.
func NewRegistry(cfg config.ModelsConfig) (*Registry, error) {
	fallback, err := newStageClient(cfg.Default)
	if err != nil {
		return nil, fmt.Errorf("default model: %w", err)
	}

	reg := &Registry{
		clients:  make(map[string]*StageClient),
		fallback: fallback,
	}

	overrides := map[string]config.StageModelConfig{
		StageQuestion: cfg.Question,
		StageRefine:   cfg.Refine,
		StageReport:   cfg.Report,
		StageConclude: cfg.Conclude,
	}
	for stage, override := range overrides {
		if override.Provider == "" && override.Model == "" {
			continue
		}
		client, err := newStageClient(mergeStageConfig(cfg.Default, override))
		if err != nil {
			return nil, fmt.Errorf("%s model: %w", stage, err)
		}
		reg.clients[stage] = client
	}

	return reg, nil
}

// ForStage returns the client bound to a stage, or the default client
// when the stage has no override.
func (r *Registry) ForStage(stage string) *StageClient {
	if client, ok := r.clients[stage]; ok {
		return client
	}
	return r.fallback
}

func newStageClient(cfg config.StageModelConfig) (*StageClient, error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}

	opts := []Option{WithModel(cfg.Model)}
	if cfg.Temperature > 0 {
		opts = append(opts, WithTemperature(cfg.Temperature))
	}
	if cfg.MaxTokens > 0 {
		opts = append(opts, WithMaxTokens(cfg.MaxTokens))
	}

	return &StageClient{provider: provider, opts: opts}, nil
}

func newProvider(cfg config.StageModelConfig) (Provider, error) {
	apiKey := ""
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}

	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(apiKey, cfg.BaseURL, cfg.Model), nil
	case "openai":
		return NewOpenAIProvider(apiKey, cfg.BaseURL, cfg.Model), nil
	case "ollama":
		return NewOllamaProvider(cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// mergeStageConfig fills the unset fields of a stage override from the
// default stage configuration.
func mergeStageConfig(def, override config.StageModelConfig) config.StageModelConfig {
	if override.Provider == "" {
		override.Provider = def.Provider
	}
	if override.Model == "" {
		override.Model = def.Model
	}
	if override.BaseURL == "" {
		override.BaseURL = def.BaseURL
	}
	if override.APIKeyEnv == "" {
		override.APIKeyEnv = def.APIKeyEnv
	}
	if override.Temperature == 0 {
		override.Temperature = def.Temperature
	}
	if override.MaxTokens == 0 {
		override.MaxTokens = def.MaxTokens
	}
	return override
}
