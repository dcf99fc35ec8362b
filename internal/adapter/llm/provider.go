package llm

import (
	"context"
	"time"

	"github.com/google/generative-ai-go/genai"

	"ai2sql/internal/pkg/config"
)

// Provider bundles the configured generator and optional embedder
type Provider struct {
	Generator Generator
	Embedder  Embedder // nil when retrieval falls back to lexical similarity
	client    *genai.Client
}

// NewProvider picks the generator from config, static unless gemini has an API key
func NewProvider(ctx context.Context, cfg config.LLMConfig) (*Provider, error) {
	if cfg.Provider != GeminiName || cfg.APIKey == "" {
		return &Provider{Generator: NewStaticGenerator()}, nil
	}

	client, err := NewGeminiClient(ctx, cfg.APIKey)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		Generator: NewGeminiGenerator(client, cfg.Model, time.Duration(cfg.Timeout)*time.Second),
		client:    client,
	}
	if cfg.EmbeddingModel != "" {
		p.Embedder = NewGeminiEmbedder(client, cfg.EmbeddingModel)
	}
	return p, nil
}

func (p *Provider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
