package repository

import (
	"context"

	"moodchat/backend/internal/model"
)

// Repository defines the interface for data storage operations. All
// operations are keyed by conversation ID and atomic at single-call
// granularity; writes to one conversation are serialized by the store while
// different conversations never block one another.
type Repository interface {
	CreateConversation(ctx context.Context, conv *model.Conversation) error
	GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error)
	GetAllConversations(ctx context.Context) ([]model.ConversationSummary, error)
	// UpdateConversation applies only the non-nil fields and touches updated_at.
	UpdateConversation(ctx context.Context, conversationID string, title, customContext *string) error
	// DeleteConversation cascades to the conversation's messages and cached theme.
	DeleteConversation(ctx context.Context, conversationID string) error

	AddMessage(ctx context.Context, conversationID string, msg *model.Message) error
	GetMessages(ctx context.Context, conversationID string) ([]model.Message, error)
	// GetRecentMessages returns the last count messages in append order.
	GetRecentMessages(ctx context.Context, conversationID string, count int) ([]model.Message, error)

	// IncrementUserMessageCount bumps the per-conversation counter and
	// returns the new value. Only the chat path calls this.
	IncrementUserMessageCount(ctx context.Context, conversationID string) (int, error)

	// SaveTheme replaces the conversation's cached theme (last write wins).
	SaveTheme(ctx context.Context, conversationID string, theme *model.Theme) error
	GetTheme(ctx context.Context, conversationID string) (*model.Theme, error)
}
