package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"moodchat/backend/internal/model"
)

type sqliteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	query := `
		INSERT INTO conversations (id, title, custom_context, created_at, updated_at, user_message_count)
		VALUES (?, ?, ?, ?, ?, 0)
	`
	_, err := r.db.ExecContext(ctx, query, conv.ID, conv.Title, conv.CustomContext, conv.CreatedAt, conv.UpdatedAt)
	return err
}

func (r *sqliteRepository) GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error) {
	query := `
		SELECT id, title, custom_context, created_at, updated_at, user_message_count
		FROM conversations WHERE id = ?
	`
	row := r.db.QueryRowContext(ctx, query, conversationID)

	var conv model.Conversation
	var customContext sql.NullString
	err := row.Scan(&conv.ID, &conv.Title, &customContext, &conv.CreatedAt, &conv.UpdatedAt, &conv.UserMessageCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if customContext.Valid {
		conv.CustomContext = customContext.String
	}
	return &conv, nil
}

func (r *sqliteRepository) GetAllConversations(ctx context.Context) ([]model.ConversationSummary, error) {
	query := `
		SELECT c.id, c.title, c.created_at, c.updated_at, c.user_message_count, COUNT(m.seq) AS message_count
		FROM conversations c
		LEFT JOIN messages m ON c.id = m.conversation_id
		GROUP BY c.id
		ORDER BY c.updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]model.ConversationSummary, 0)
	for rows.Next() {
		var s model.ConversationSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt, &s.UpdatedAt, &s.UserMessageCount, &s.MessageCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *sqliteRepository) UpdateConversation(ctx context.Context, conversationID string, title, customContext *string) error {
	query := "UPDATE conversations SET "
	args := []any{}

	if title != nil {
		query += "title = ?, "
		args = append(args, *title)
	}
	if customContext != nil {
		query += "custom_context = ?, "
		args = append(args, *customContext)
	}
	query += "updated_at = ? WHERE id = ?"
	args = append(args, time.Now().UTC(), conversationID)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) DeleteConversation(ctx context.Context, conversationID string) error {
	// Messages and the cached theme cascade via foreign keys.
	res, err := r.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", conversationID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMessage inserts the message and touches the conversation's updated_at
// inside one transaction, so a crash between the two cannot leave a stale
// conversation ordering.
func (r *sqliteRepository) AddMessage(ctx context.Context, conversationID string, msg *model.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertQuery := `
		INSERT INTO messages (id, conversation_id, role, content, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, insertQuery, msg.ID, conversationID, msg.Role, msg.Content, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("could not insert message: %w", err)
	}

	_, err = tx.ExecContext(ctx, "UPDATE conversations SET updated_at = ? WHERE id = ?", time.Now().UTC(), conversationID)
	if err != nil {
		return fmt.Errorf("could not update conversation timestamp: %w", err)
	}

	return tx.Commit()
}

func (r *sqliteRepository) GetMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	query := `
		SELECT id, role, content, timestamp
		FROM messages
		WHERE conversation_id = ?
		ORDER BY seq ASC
	`
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *sqliteRepository) GetRecentMessages(ctx context.Context, conversationID string, count int) ([]model.Message, error) {
	// The seq column is the append order; timestamps can collide within a
	// fast turn.
	query := `
		SELECT id, role, content, timestamp
		FROM messages
		WHERE conversation_id = ?
		ORDER BY seq DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, conversationID, count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	// Back to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func scanMessages(rows *sql.Rows) ([]model.Message, error) {
	messages := make([]model.Message, 0)
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *sqliteRepository) IncrementUserMessageCount(ctx context.Context, conversationID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE conversations
		SET user_message_count = user_message_count + 1, updated_at = ?
		WHERE id = ?
	`
	res, err := tx.ExecContext(ctx, query, time.Now().UTC(), conversationID)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, ErrNotFound
	}

	var count int
	row := tx.QueryRowContext(ctx, "SELECT user_message_count FROM conversations WHERE id = ?", conversationID)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *sqliteRepository) SaveTheme(ctx context.Context, conversationID string, theme *model.Theme) error {
	data, err := json.Marshal(theme)
	if err != nil {
		return fmt.Errorf("could not marshal theme: %w", err)
	}

	// Upsert by conversation ID: a newer theme always replaces the cached
	// one, never merges with it.
	query := `
		INSERT INTO themes (conversation_id, theme_data, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET theme_data = excluded.theme_data, created_at = excluded.created_at
	`
	_, err = r.db.ExecContext(ctx, query, conversationID, string(data), time.Now().UTC())
	return err
}

func (r *sqliteRepository) GetTheme(ctx context.Context, conversationID string) (*model.Theme, error) {
	row := r.db.QueryRowContext(ctx, "SELECT theme_data FROM themes WHERE conversation_id = ?", conversationID)

	var data string
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var theme model.Theme
	if err := json.Unmarshal([]byte(data), &theme); err != nil {
		return nil, fmt.Errorf("could not unmarshal stored theme: %w", err)
	}
	return &theme, nil
}
