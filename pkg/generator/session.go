package generator

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	configpkg "github.com/minhyannv/compose-gen/pkg/config"
	"github.com/minhyannv/compose-gen/pkg/extract"
	loggerpkg "github.com/minhyannv/compose-gen/pkg/logger"
	"github.com/minhyannv/compose-gen/pkg/prompt"
)

// Role is the role for a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role    Role
	Content string
}

// Session holds one generator conversation. The transcript always starts
// with the system message, which is never modified.
type Session struct {
	config     configpkg.Config
	client     openai.Client
	transcript []Message

	ctx     context.Context
	logger  loggerpkg.Logger
	verbose bool
}

// New initializes a Session seeded with the system prompt and the greeting.
func New(ctx context.Context, cfg configpkg.Config, systemPrompt string, opts ...Option) (*Session, error) {
	cfg = configpkg.Normalize(cfg)
	deps := sessionDeps{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}

	loggerpkg.Debug(cfg.Verbose, deps.logger, "session init", map[string]any{
		"model":            cfg.Model,
		"base_url":         cfg.BaseURL,
		"chat_max_tokens":  cfg.ChatMaxTokens,
		"final_max_tokens": cfg.FinalMaxTokens,
		"system_bytes":     len(systemPrompt),
	})
	if cfg.APIKey == "" {
		return nil, errors.New("APIKey is not set")
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, errors.New("system prompt is empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	return &Session{
		config: cfg,
		client: newOpenAIClient(cfg),
		transcript: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleAssistant, Content: prompt.Greeting},
		},
		ctx:     ctx,
		logger:  deps.logger,
		verbose: cfg.Verbose,
	}, nil
}

func newOpenAIClient(cfg configpkg.Config) openai.Client {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return openai.NewClient(opts...)
}

// Greeting returns the opening assistant message.
func (s *Session) Greeting() string {
	return prompt.Greeting
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []Message {
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Send records the user input, requests a reply over the full transcript,
// and records the reply. On error the transcript is left unchanged.
func (s *Session) Send(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", errors.New("user input is required")
	}
	return s.exchange(input, s.config.ChatMaxTokens)
}

// Finalize asks for the fenced compose/env output and extracts it.
func (s *Session) Finalize() (extract.Artifacts, error) {
	reply, err := s.exchange(prompt.FinalizeInstruction, s.config.FinalMaxTokens)
	if err != nil {
		return extract.Artifacts{}, err
	}
	artifacts := extract.FromReply(reply)
	loggerpkg.Debug(s.verbose, s.logger, "final reply extracted", map[string]any{
		"compose_bytes": len(artifacts.Compose),
		"env_bytes":     len(artifacts.Env),
		"has_env":       artifacts.HasEnv,
	})
	return artifacts, nil
}

// ReadyToGenerate reports whether reply signals that enough has been
// gathered to produce the files.
func ReadyToGenerate(reply string) bool {
	return strings.Contains(reply, prompt.ReadySentinel)
}

func (s *Session) exchange(userText string, maxTokens int64) (string, error) {
	previousLen := len(s.transcript)
	s.transcript = append(s.transcript, Message{Role: RoleUser, Content: userText})

	reply, err := s.complete(maxTokens)
	if err != nil {
		s.transcript = s.transcript[:previousLen]
		return "", err
	}
	s.transcript = append(s.transcript, Message{Role: RoleAssistant, Content: reply})
	return reply, nil
}

// complete performs one model completion request over the transcript.
func (s *Session) complete(maxTokens int64) (string, error) {
	loggerpkg.Debug(s.verbose, s.logger, "sending request", map[string]any{
		"messages":   len(s.transcript),
		"max_tokens": maxTokens,
	})
	completion, err := s.client.Chat.Completions.New(s.ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(s.config.Model),
		Messages:  toOpenAIMessages(s.transcript),
		MaxTokens: openai.Int(maxTokens),
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("empty completion choices")
	}
	return completion.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}
