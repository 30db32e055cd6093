package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	app_errors "moodchat/backend/internal/errors"
	"moodchat/backend/internal/llm"
	"moodchat/backend/internal/model"
	"moodchat/backend/internal/repository"
)

const defaultSystemPrompt = "You are a helpful AI assistant."

// ChatService owns the per-turn conversation logic: persisting messages,
// streaming the assistant reply to the push channel and deciding when to
// hand off to the theme pipeline.
type ChatService struct {
	repo       repository.Repository
	llm        llm.LLMProvider
	themes     *ThemeService
	chatModel  string
	chatWindow int
	themeEvery int
	timeout    time.Duration
}

type ChatOptions struct {
	ChatModel  string
	ChatWindow int
	ThemeEvery int
	Timeout    time.Duration
}

func NewChatService(repo repository.Repository, llmProvider llm.LLMProvider, themes *ThemeService, opts ChatOptions) *ChatService {
	if opts.ChatWindow <= 0 {
		opts.ChatWindow = 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	return &ChatService{
		repo:       repo,
		llm:        llmProvider,
		themes:     themes,
		chatModel:  opts.ChatModel,
		chatWindow: opts.ChatWindow,
		themeEvery: opts.ThemeEvery,
		timeout:    opts.Timeout,
	}
}

// CreateConversation creates a new, empty conversation.
func (s *ChatService) CreateConversation(ctx context.Context, title, customContext string) (*model.Conversation, error) {
	now := time.Now().UTC()
	conv := &model.Conversation{
		ID:            uuid.NewString(),
		Title:         title,
		CustomContext: customContext,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("could not create conversation: %w", err)
	}
	return conv, nil
}

// ListConversations returns summaries of all conversations.
func (s *ChatService) ListConversations(ctx context.Context) ([]model.ConversationSummary, error) {
	return s.repo.GetAllConversations(ctx)
}

// GetFullConversation returns the conversation with its messages and the
// currently cached theme, if any.
func (s *ChatService) GetFullConversation(ctx context.Context, conversationID string) (*model.FullConversation, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	messages, err := s.repo.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("could not get messages: %w", err)
	}

	full := &model.FullConversation{Conversation: *conv, Messages: messages}

	theme, err := s.repo.GetTheme(ctx, conversationID)
	if err == nil {
		full.CurrentTheme = theme
	} else if !errors.Is(err, repository.ErrNotFound) {
		slog.Warn("Could not load cached theme", "conversation_id", conversationID, "error", err)
	}
	return full, nil
}

// UpdateConversation updates title and/or custom context.
func (s *ChatService) UpdateConversation(ctx context.Context, conversationID string, title, customContext *string) (*model.Conversation, error) {
	if title != nil && *title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", app_errors.ErrValidation)
	}
	if err := s.repo.UpdateConversation(ctx, conversationID, title, customContext); err != nil {
		return nil, translateRepoErr(err)
	}
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return conv, nil
}

// DeleteConversation removes the conversation, its messages and its theme.
func (s *ChatService) DeleteConversation(ctx context.Context, conversationID string) error {
	slog.Info("Deleting conversation", "conversation_id", conversationID)
	return translateRepoErr(s.repo.DeleteConversation(ctx, conversationID))
}

// AppendContextFile appends an uploaded context file to the conversation's
// custom context in the `[File: name]` framing the frontend expects.
func (s *ChatService) AppendContextFile(ctx context.Context, conversationID, filename, content string) error {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return translateRepoErr(err)
	}
	combined := fmt.Sprintf("%s\n\n[File: %s]\n%s", conv.CustomContext, filename, content)
	return translateRepoErr(s.repo.UpdateConversation(ctx, conversationID, nil, &combined))
}

// GetTheme returns the conversation's cached theme.
func (s *ChatService) GetTheme(ctx context.Context, conversationID string) (*model.Theme, error) {
	theme, err := s.repo.GetTheme(ctx, conversationID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return theme, nil
}

// HandleUserMessage processes one user turn: it persists the user message,
// bumps the user-message counter, streams the assistant reply to the
// notifier as start/chunk/end events, persists the finished reply, and then
// evaluates the theme trigger. The theme task, if launched, is detached: the
// call returns without waiting for it, so theme latency never inflates chat
// latency.
func (s *ChatService) HandleUserMessage(ctx context.Context, conversationID, content string, n Notifier) error {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		n.Send(model.Event{Type: model.EventError, Message: "Conversation not found"})
		return translateRepoErr(err)
	}

	userMsg := &model.Message{
		ID:        uuid.NewString(),
		Role:      model.RoleUser,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if err := s.repo.AddMessage(ctx, conversationID, userMsg); err != nil {
		n.Send(model.Event{Type: model.EventError, Message: "Could not save message"})
		return fmt.Errorf("could not save user message: %w", err)
	}

	count, err := s.repo.IncrementUserMessageCount(ctx, conversationID)
	if err != nil {
		// The counter drives the trigger policy only; the turn itself can
		// still proceed.
		slog.Error("Could not increment user message count", "conversation_id", conversationID, "error", err)
	}

	history, err := s.repo.GetRecentMessages(ctx, conversationID, s.chatWindow)
	if err != nil {
		n.Send(model.Event{Type: model.EventError, Message: "Could not load history"})
		return fmt.Errorf("could not load history: %w", err)
	}

	reply, err := s.streamReply(ctx, conv, history, n)
	if err != nil {
		n.Send(model.Event{Type: model.EventError, Message: describeChatError(err)})
		return err
	}

	assistantMsg := &model.Message{
		ID:        uuid.NewString(),
		Role:      model.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now().UTC(),
	}
	if err := s.repo.AddMessage(ctx, conversationID, assistantMsg); err != nil {
		n.Send(model.Event{Type: model.EventError, Message: "Could not save reply"})
		return fmt.Errorf("could not save assistant message: %w", err)
	}

	n.Send(model.Event{Type: model.EventEnd})

	if s.shouldGenerateTheme(count) {
		s.themes.Launch(conversationID, n)
	}
	return nil
}

// streamReply runs the streaming chat call and forwards fragments in arrival
// order. It returns the concatenated reply on success. Nothing is persisted
// here: a failed turn leaves no assistant message behind.
func (s *ChatService) streamReply(ctx context.Context, conv *model.Conversation, history []model.Message, n Notifier) (string, error) {
	systemPrompt := defaultSystemPrompt
	if conv.CustomContext != "" {
		systemPrompt = conv.CustomContext + "\n\nRespond naturally and contextually."
	}

	llmMessages := make([]llm.Message, 0, len(history)+1)
	llmMessages = append(llmMessages, llm.Message{Role: "system", Content: systemPrompt})
	for _, msg := range history {
		llmMessages = append(llmMessages, llm.Message{Role: msg.Role, Content: msg.Content})
	}

	streamCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ch := make(chan llm.StreamResponse)
	go func() {
		if err := s.llm.GenerateStream(streamCtx, &llm.GenerateRequest{
			Model:    s.chatModel,
			Messages: llmMessages,
		}, ch); err != nil {
			slog.Debug("Chat stream ended with error", "error", err)
		}
	}()

	n.Send(model.Event{Type: model.EventStart})

	var reply strings.Builder
	for chunk := range ch {
		if chunk.Error != "" {
			return "", fmt.Errorf("%w: %s", app_errors.ErrServiceUnavailable, chunk.Error)
		}
		if chunk.Content != "" {
			n.Send(model.Event{Type: model.EventChunk, Content: chunk.Content})
			reply.WriteString(chunk.Content)
		}
	}

	if err := streamCtx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: chat stream timed out", app_errors.ErrTimeout)
		}
		return "", err
	}
	return reply.String(), nil
}

// shouldGenerateTheme is the trigger policy: every themeEvery-th user
// message starts a theme task. A non-positive period disables generation.
func (s *ChatService) shouldGenerateTheme(userMessageCount int) bool {
	if s.themeEvery <= 0 || s.themes == nil {
		return false
	}
	return userMessageCount > 0 && userMessageCount%s.themeEvery == 0
}

func describeChatError(err error) string {
	switch {
	case errors.Is(err, app_errors.ErrTimeout):
		return "The model took too long to respond"
	case errors.Is(err, app_errors.ErrServiceUnavailable):
		return "The model service is unavailable"
	default:
		return "Failed to generate a response"
	}
}

func translateRepoErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: conversation", app_errors.ErrNotFound)
	}
	return err
}
