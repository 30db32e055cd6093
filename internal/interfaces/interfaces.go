package interfaces

import (
	"context"

	"moodchat/backend/internal/model"
	"moodchat/backend/internal/service"
)

// This file defines the interfaces for our core services. The API layer
// depends on these, not on the concrete service structs, which keeps the
// layers decoupled and makes handler tests trivial to mock.

// ConversationService is the contract for conversation-related business
// logic, including the per-turn push-channel handling.
type ConversationService interface {
	CreateConversation(ctx context.Context, title, customContext string) (*model.Conversation, error)
	ListConversations(ctx context.Context) ([]model.ConversationSummary, error)
	GetFullConversation(ctx context.Context, conversationID string) (*model.FullConversation, error)
	UpdateConversation(ctx context.Context, conversationID string, title, customContext *string) (*model.Conversation, error)
	DeleteConversation(ctx context.Context, conversationID string) error
	AppendContextFile(ctx context.Context, conversationID, filename, content string) error
	GetTheme(ctx context.Context, conversationID string) (*model.Theme, error)

	// HandleUserMessage processes one user turn, emitting protocol events on
	// the notifier. It blocks until the chat path of the turn is finished;
	// any theme task it triggers keeps running after it returns.
	HandleUserMessage(ctx context.Context, conversationID, content string, n service.Notifier) error
}
