// Copyright 2026 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package llm abstracts "submit prompt, get completion" over chat-completion
// style HTTP backends.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/wire"
	"github.com/pkg/errors"
)

// ProviderSet is the Wire provider set for the llm package.
var ProviderSet = wire.NewSet(ProvideFactory)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// IClient submits a prompt and returns the completion text.
type IClient interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Config defines LLM backend configuration.
type Config struct {
	Provider     string  `mapstructure:"provider"` // openai-compatible chat completions
	BaseURL      string  `mapstructure:"baseUrl"`
	APIKey       string  `mapstructure:"apiKey"`
	DefaultModel string  `mapstructure:"defaultModel"`
	Timeout      int     `mapstructure:"timeout"` // seconds, per call
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"maxTokens"`
}

func (c *Config) SetDefaults() {
	if c.Provider == "" {
		c.Provider = "openai"
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.DefaultModel == "" {
		c.DefaultModel = "gpt-4o-mini"
	}
	if c.Timeout <= 0 {
		c.Timeout = 120
	}
	if c.Temperature == 0 {
		c.Temperature = 0.1
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 4000
	}
}

// IFactory creates clients bound to a per-run model choice.
type IFactory interface {
	Client(model string) (IClient, error)
}

type factory struct {
	cfg Config
}

var _ IFactory = (*factory)(nil)

// ProvideFactory creates the client factory from config.
func ProvideFactory(cfg Config) IFactory {
	cfg.SetDefaults()
	return &factory{cfg: cfg}
}

// Client returns a client for the given model, falling back to the configured
// default when model is empty.
func (f *factory) Client(model string) (IClient, error) {
	switch strings.ToLower(f.cfg.Provider) {
	case "openai", "openai-compatible":
		m := strings.TrimSpace(model)
		if m == "" {
			m = f.cfg.DefaultModel
		}
		return newOpenAIClient(f.cfg, m), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", f.cfg.Provider)
	}
}

// openAIClient speaks the OpenAI-compatible chat completions protocol.
type openAIClient struct {
	http  *resty.Client
	model string
	cfg   Config
}

func newOpenAIClient(cfg Config, model string) *openAIClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(time.Duration(cfg.Timeout) * time.Second).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &openAIClient{http: client, model: model, cfg: cfg}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete submits the chat and returns the first choice's content.
func (c *openAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: c.cfg.Temperature,
			MaxTokens:   c.cfg.MaxTokens,
		}).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		return "", errors.Wrap(err, "llm request failed")
	}
	if out.Error != nil {
		return "", fmt.Errorf("llm backend error (%s): %s", out.Error.Type, out.Error.Message)
	}
	if resp.IsError() {
		return "", fmt.Errorf("llm backend returned status %d", resp.StatusCode())
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("llm backend returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
