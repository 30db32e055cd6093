package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	app_errors "moodchat/backend/internal/errors"
	"moodchat/backend/internal/interfaces"
)

// Limits for context-file uploads.
const (
	maxContextFileBytes = 1_000_000
)

var allowedUploadTypes = map[string]bool{
	"text/plain":       true,
	"text/markdown":    true,
	"application/json": true,
}

// ConversationHandler exposes the conversation REST surface.
type ConversationHandler struct {
	service interfaces.ConversationService
}

func NewConversationHandler(svc interfaces.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: svc}
}

// CreateConversationRequest is the DTO for creating a conversation.
type CreateConversationRequest struct {
	Title         string `json:"title" validate:"required,min=1,max=200" example:"Trip planning"`
	CustomContext string `json:"custom_context" validate:"max=100000"`
}

// UpdateConversationRequest carries optional updates; nil fields are left
// untouched.
type UpdateConversationRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	CustomContext *string `json:"custom_context,omitempty" validate:"omitempty,max=100000"`
}

// HandleListConversations godoc
// @Summary      List conversations
// @Description  Returns summaries of all conversations, most recently updated first.
// @Tags         Conversations
// @Produce      json
// @Success      200  {array}   model.ConversationSummary
// @Failure      500  {object}  ErrorResponse
// @Router       /conversations [get]
func (h *ConversationHandler) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListConversations(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summaries)
}

// HandleCreateConversation godoc
// @Summary      Create a conversation
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        conversation  body      CreateConversationRequest  true  "Conversation to create"
// @Success      201           {object}  model.Conversation
// @Failure      400           {object}  ErrorResponse
// @Router       /conversations [post]
func (h *ConversationHandler) HandleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	conv, err := h.service.CreateConversation(r.Context(), req.Title, req.CustomContext)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, conv)
}

// HandleGetConversation godoc
// @Summary      Get a conversation
// @Description  Returns the conversation with all messages and the cached theme.
// @Tags         Conversations
// @Produce      json
// @Param        conversationID  path      string  true  "Conversation ID"
// @Success      200             {object}  model.FullConversation
// @Failure      404             {object}  ErrorResponse
// @Router       /conversations/{conversationID} [get]
func (h *ConversationHandler) HandleGetConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	full, err := h.service.GetFullConversation(r.Context(), conversationID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, full)
}

// HandleUpdateConversation godoc
// @Summary      Update conversation metadata
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        conversationID  path      string                     true  "Conversation ID"
// @Param        update          body      UpdateConversationRequest  true  "Fields to update"
// @Success      200             {object}  model.Conversation
// @Failure      400             {object}  ErrorResponse
// @Failure      404             {object}  ErrorResponse
// @Router       /conversations/{conversationID} [put]
func (h *ConversationHandler) HandleUpdateConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req UpdateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	conv, err := h.service.UpdateConversation(r.Context(), conversationID, req.Title, req.CustomContext)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, conv)
}

// HandleDeleteConversation godoc
// @Summary      Delete a conversation
// @Description  Deletes the conversation, its messages and its cached theme.
// @Tags         Conversations
// @Produce      json
// @Param        conversationID  path      string  true  "Conversation ID"
// @Success      200             {object}  StatusResponse
// @Failure      404             {object}  ErrorResponse
// @Router       /conversations/{conversationID} [delete]
func (h *ConversationHandler) HandleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if err := h.service.DeleteConversation(r.Context(), conversationID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleGetTheme godoc
// @Summary      Get the cached theme
// @Tags         Themes
// @Produce      json
// @Param        conversationID  path      string  true  "Conversation ID"
// @Success      200             {object}  model.Theme
// @Failure      404             {object}  ErrorResponse
// @Router       /conversations/{conversationID}/theme [get]
func (h *ConversationHandler) HandleGetTheme(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	theme, err := h.service.GetTheme(r.Context(), conversationID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, theme)
}

// HandleUploadContextFile godoc
// @Summary      Upload a context file
// @Description  Appends a small text file (txt, md or json, max 1MB) to the conversation's custom context.
// @Tags         Conversations
// @Accept       mpfd
// @Produce      json
// @Param        conversationID  path      string  true  "Conversation ID"
// @Param        file            formData  file    true  "Context file"
// @Success      200             {object}  StatusResponse
// @Failure      400             {object}  ErrorResponse
// @Failure      404             {object}  ErrorResponse
// @Router       /conversations/{conversationID}/files [post]
func (h *ConversationHandler) HandleUploadContextFile(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	r.Body = http.MaxBytesReader(w, r.Body, maxContextFileBytes+4096)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, fmt.Errorf("%w: missing or oversized file upload", app_errors.ErrValidation))
		return
	}
	defer file.Close()

	if header.Size > maxContextFileBytes {
		respondWithError(w, fmt.Errorf("%w: file too large (max 1MB)", app_errors.ErrValidation))
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !allowedUploadTypes[contentType] {
		respondWithError(w, fmt.Errorf("%w: only txt, md and json files are allowed", app_errors.ErrValidation))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		respondWithError(w, fmt.Errorf("could not read uploaded file: %w", err))
		return
	}

	if err := h.service.AppendContextFile(r.Context(), conversationID, header.Filename, string(content)); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}
