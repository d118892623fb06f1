// Package llm holds the authenticated chat-completion session used for
// every analysis.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const (
	DefaultModel   = "gpt-3.5-turbo"
	DefaultBaseURL = "https://api.openai.com/v1"
)

var (
	// ErrNotAuthenticated is returned by Complete on a session that was never
	// created through Authenticate.
	ErrNotAuthenticated = errors.New("please authenticate first")
	ErrMissingAPIKey    = errors.New("API key is required")
	ErrEmptyResponse    = errors.New("no completion returned")
)

// RemoteError carries the provider's error unchanged.
type RemoteError struct {
	Err error
}

func (e *RemoteError) Error() string {
	return e.Err.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// ChatModel is the part of an eino chat model a Session needs.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout of zero leaves the HTTP client default in place.
	Timeout time.Duration
}

// Session is an authenticated handle on the chat-completion endpoint. It is
// immutable after Authenticate and safe for concurrent use.
type Session struct {
	chat  ChatModel
	model string
}

// Authenticate validates the credential and builds the session. No request
// is sent to the provider.
func Authenticate(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	chat, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return NewSession(chat, cfg.Model), nil
}

// NewSession wraps an already configured chat model.
func NewSession(chat ChatModel, modelName string) *Session {
	return &Session{chat: chat, model: modelName}
}

func (s *Session) Model() string {
	if s == nil {
		return ""
	}
	return s.model
}

// Complete sends prompt as a single user message and returns the reply.
func (s *Session) Complete(ctx context.Context, prompt string) (string, error) {
	if s == nil || s.chat == nil {
		return "", ErrNotAuthenticated
	}

	resp, err := s.chat.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", &RemoteError{Err: err}
	}
	if resp == nil {
		return "", &RemoteError{Err: ErrEmptyResponse}
	}

	return resp.Content, nil
}
