package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	app_errors "moodchat/backend/internal/errors"
	"moodchat/backend/internal/extract"
	"moodchat/backend/internal/llm"
	"moodchat/backend/internal/model"
	"moodchat/backend/internal/repository"
)

// Notifier delivers push-channel events for one conversation connection.
// Send reports false once the connection is gone; producers treat delivery
// as best-effort and carry on, since persistence does not depend on the
// client still listening.
type Notifier interface {
	Send(event model.Event) bool
}

// designPromptTemplate drives the design stage: a free-text mood analysis.
// Its output is never parsed, only handed to the code stage verbatim.
const designPromptTemplate = `You are an expert UX/UI designer. Read the conversation below and describe a visual theme matching its emotional tone.

Respond with labeled lines only, in this form:
NAME: short theme name
MOOD: one or two words
ICON: a single emoji
PRIMARY: #hexcode
SECONDARY: #hexcode
BACKGROUND: #hexcode
TEXT: #hexcode
ACCENT: #hexcode
NOTES: one sentence on bubbles, typography and animation
%s
Conversation:
%s`

// codePromptTemplate drives the code stage: it embeds the design
// specification and demands exactly one JSON object.
const codePromptTemplate = `You are a theme generator. Convert the design specification below into a theme. Output ONLY this JSON object, no other text:
{
  "id": "theme_id",
  "name": "Theme Name",
  "primaryColor": "#hex",
  "secondaryColor": "#hex",
  "backgroundColor": "#hex",
  "textColor": "#hex",
  "accentColor": "#hex",
  "gradientStart": "#hex",
  "gradientEnd": "#hex",
  "messageUserBg": "#hex",
  "messageAssistantBg": "#hex",
  "borderColor": "#hex",
  "shadowColor": "rgba(r,g,b,0.3)",
  "icon": "emoji",
  "conversationDesign": {
    "bubbleShape": "rounded|sharp|pill",
    "bubbleSpacing": "tight|normal|loose",
    "fontFamily": "font stack",
    "fontSize": "small|medium|large",
    "animation": "fade|slide|glow",
    "layoutSpacing": "compact|comfortable|spacious",
    "glow": false,
    "gradient": true,
    "mood": "one word"
  }
}

Design specification:
%s`

// ThemeService runs the two-stage theme pipeline: a design-model call that
// produces a free-text design specification, then a code-model call whose
// output is scanned for the theme JSON. A run either yields a complete theme
// or fails as a whole; there are no retries and no partially applied themes.
type ThemeService struct {
	repo    repository.Repository
	llm     llm.LLMProvider
	cfg     Options
	timeout time.Duration

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// Options carries the pipeline's tunables out of the application config.
type Options struct {
	DesignModel string
	CodeModel   string
	Window      int
	Timeout     time.Duration
}

func NewThemeService(repo repository.Repository, llmProvider llm.LLMProvider, opts Options) *ThemeService {
	if opts.Window <= 0 {
		opts.Window = 6
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	return &ThemeService{
		repo:     repo,
		llm:      llmProvider,
		cfg:      opts,
		timeout:  opts.Timeout,
		inFlight: make(map[string]struct{}),
	}
}

// Launch starts a theme task for the conversation unless one is already in
// flight, in which case the trigger is dropped: the next periodic trigger
// supersedes it. The task runs detached from the turn that triggered it; its
// continuation owns both the persistence write and the client notification.
func (s *ThemeService) Launch(conversationID string, n Notifier) bool {
	s.mu.Lock()
	if _, running := s.inFlight[conversationID]; running {
		s.mu.Unlock()
		slog.Debug("Theme task already in flight, dropping trigger", "conversation_id", conversationID)
		return false
	}
	s.inFlight[conversationID] = struct{}{}
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, conversationID)
			s.mu.Unlock()
		}()

		n.Send(model.Event{Type: model.EventThemeGenerating, Message: "Analyzing conversation mood..."})

		theme, err := s.Generate(context.Background(), conversationID, n)
		if err != nil {
			slog.Warn("Theme generation failed", "conversation_id", conversationID, "error", err)
			n.Send(model.Event{Type: model.EventThemeError})
			return
		}

		if err := s.repo.SaveTheme(context.Background(), conversationID, theme); err != nil {
			slog.Error("Failed to persist generated theme", "conversation_id", conversationID, "error", err)
			n.Send(model.Event{Type: model.EventThemeError})
			return
		}

		n.Send(model.Event{Type: model.EventThemeUpdate, Theme: theme})
	}()
	return true
}

// Generate runs the pipeline synchronously and returns the validated theme.
// The notifier only receives the design-stage progress event here; lifecycle
// events belong to Launch.
func (s *ThemeService) Generate(ctx context.Context, conversationID string, n Notifier) (*model.Theme, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: could not load conversation: %v", app_errors.ErrThemeGeneration, err)
	}

	window, err := s.repo.GetRecentMessages(ctx, conversationID, s.cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("%w: could not load message window: %v", app_errors.ErrThemeGeneration, err)
	}

	design, err := s.runDesignStage(ctx, conv, window)
	if err != nil {
		return nil, fmt.Errorf("%w: design stage: %v", app_errors.ErrThemeGeneration, err)
	}
	if n != nil {
		n.Send(model.Event{Type: model.EventThemeDesignComplete, Design: truncate(design, 200)})
	}

	theme, err := s.runCodeStage(ctx, design)
	if err != nil {
		return nil, fmt.Errorf("%w: code stage: %v", app_errors.ErrThemeGeneration, err)
	}
	return theme, nil
}

// runDesignStage renders the message window as role-prefixed lines and asks
// the design model for a free-text design specification.
func (s *ThemeService) runDesignStage(ctx context.Context, conv *model.Conversation, window []model.Message) (string, error) {
	lines := make([]string, 0, len(window))
	for _, m := range window {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}

	steering := ""
	if conv.CustomContext != "" {
		steering = fmt.Sprintf("\nStyle guidance from the user:\n%s\n", truncate(conv.CustomContext, 500))
	}
	prompt := fmt.Sprintf(designPromptTemplate, steering, strings.Join(lines, "\n"))

	stageCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.llm.Generate(stageCtx, &llm.GenerateRequest{
		Model:  s.cfg.DesignModel,
		Prompt: prompt,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Response) == "" {
		return "", errors.New("design model returned empty specification")
	}
	return resp.Response, nil
}

// runCodeStage streams the code model's output through the extractor and
// returns as soon as the first balanced JSON object parses, abandoning the
// rest of the stream.
func (s *ThemeService) runCodeStage(ctx context.Context, design string) (*model.Theme, error) {
	prompt := fmt.Sprintf(codePromptTemplate, design)

	temperature := 0.2
	topP := 0.9
	numPredict := 600
	req := &llm.GenerateRequest{
		Model:  s.cfg.CodeModel,
		Prompt: prompt,
		Options: &llm.Options{
			Temperature: &temperature,
			TopP:        &topP,
			NumPredict:  &numPredict,
			// Ollama strips the stop text itself, so stopping on "}" would
			// eat the closing brace; a fence stop just keeps the model from
			// rambling past the object in markdown.
			Stop: []string{"```"},
		},
	}

	stageCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ch := make(chan llm.StreamResponse)
	go func() {
		if err := s.llm.GenerateStream(stageCtx, req, ch); err != nil {
			slog.Debug("Code stage stream ended with error", "error", err)
		}
	}()

	scanner := extract.NewScanner()
	var raw json.RawMessage
	var scanErr error
	for chunk := range ch {
		if chunk.Error != "" {
			return nil, errors.New(chunk.Error)
		}
		raw, scanErr = scanner.Write(chunk.Content)
		if scanErr == nil {
			// Got the object; the stream is abandoned and the provider
			// goroutine unwinds via context cancellation.
			cancel()
			break
		}
		if errors.Is(scanErr, extract.ErrMalformed) {
			cancel()
			return nil, scanErr
		}
	}
	if raw == nil {
		if _, err := scanner.Close(); err != nil {
			return nil, err
		}
	}

	var theme model.Theme
	if err := json.Unmarshal(raw, &theme); err != nil {
		return nil, fmt.Errorf("extracted object does not describe a theme: %w", err)
	}
	if theme.ID == "" {
		theme.ID = slugify(theme.Name)
	}
	return &theme, nil
}

// slugify derives a stable identifier from a theme name.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "mood-theme"
	}
	return slug
}

// truncate shortens a string to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
