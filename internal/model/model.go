package model

import "time"

// Conversation stores metadata about a single conversation.
type Conversation struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	CustomContext    string    `json:"custom_context"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	UserMessageCount int       `json:"user_message_count"`
}

// ConversationSummary is the list-view projection of a conversation.
type ConversationSummary struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	MessageCount     int       `json:"message_count"`
	UserMessageCount int       `json:"user_message_count"`
}

// FullConversation includes the conversation metadata, all its messages and
// the currently cached theme (nil until the first successful generation).
type FullConversation struct {
	Conversation
	Messages     []Message `json:"messages"`
	CurrentTheme *Theme    `json:"current_theme,omitempty"`
}

// Message is a single entry in a conversation. Messages are immutable once
// appended; append order is the chat history order.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Roles a message can carry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Theme is the visual theme derived from a conversation's mood. The field set
// mirrors what the code-stage model is asked to emit; the struct is stored and
// transported as an opaque JSON value, so missing fields stay empty here and
// are defaulted at the point of use, not at parse time.
type Theme struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	PrimaryColor       string              `json:"primaryColor"`
	SecondaryColor     string              `json:"secondaryColor"`
	BackgroundColor    string              `json:"backgroundColor"`
	TextColor          string              `json:"textColor"`
	AccentColor        string              `json:"accentColor"`
	GradientStart      string              `json:"gradientStart"`
	GradientEnd        string              `json:"gradientEnd"`
	MessageUserBg      string              `json:"messageUserBg"`
	MessageAssistantBg string              `json:"messageAssistantBg"`
	BorderColor        string              `json:"borderColor"`
	ShadowColor        string              `json:"shadowColor"` // rgba(...) string, not hex
	Icon               string              `json:"icon"`
	Design             *ConversationDesign `json:"conversationDesign,omitempty"`
}

// ConversationDesign is the optional extension block a theme may carry.
// All fields are optional so that older stored themes keep decoding as the
// set grows.
type ConversationDesign struct {
	BubbleShape   string `json:"bubbleShape,omitempty"`
	BubbleSpacing string `json:"bubbleSpacing,omitempty"`
	FontFamily    string `json:"fontFamily,omitempty"`
	FontSize      string `json:"fontSize,omitempty"`
	Animation     string `json:"animation,omitempty"`
	LayoutSpacing string `json:"layoutSpacing,omitempty"`
	Glow          bool   `json:"glow,omitempty"`
	Gradient      bool   `json:"gradient,omitempty"`
	Mood          string `json:"mood,omitempty"`
}

// DesignOrDefault returns the theme's design extension with unset sub-fields
// filled in. Defaulting happens here, at the consumption boundary, so the
// stored format stays forward-compatible with new extension fields.
func (t *Theme) DesignOrDefault() ConversationDesign {
	d := ConversationDesign{}
	if t.Design != nil {
		d = *t.Design
	}
	if d.BubbleShape == "" {
		d.BubbleShape = "rounded"
	}
	if d.BubbleSpacing == "" {
		d.BubbleSpacing = "normal"
	}
	if d.FontFamily == "" {
		d.FontFamily = "system-ui"
	}
	if d.FontSize == "" {
		d.FontSize = "medium"
	}
	if d.Animation == "" {
		d.Animation = "fade"
	}
	if d.LayoutSpacing == "" {
		d.LayoutSpacing = "comfortable"
	}
	if d.Mood == "" {
		d.Mood = "calm"
	}
	return d
}

// Event is a single message pushed to the client over the conversation
// websocket. One event per logical occurrence; unused fields are omitted.
type Event struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
	Design  string `json:"design,omitempty"`
	Theme   *Theme `json:"theme,omitempty"`
}

// Event types on the chat path. For one user turn they are always emitted in
// start, chunk..., end order.
const (
	EventStart = "start"
	EventChunk = "chunk"
	EventEnd   = "end"
	EventError = "error"
)

// Event types on the theme path. These may interleave with a later turn's
// chat events; the client protocol tolerates that.
const (
	EventThemeGenerating     = "theme_generating"
	EventThemeDesignComplete = "theme_design_complete"
	EventThemeUpdate         = "theme_update"
	EventThemeError          = "theme_error"
)
