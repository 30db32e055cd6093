package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"moodchat/backend/internal/api"
	app_errors "moodchat/backend/internal/errors"
	mock_interfaces "moodchat/backend/internal/interfaces/mocks"
	"moodchat/backend/internal/model"
)

// addChiURLParams injects URL parameters into the request context so handlers
// can be exercised without a full router.
func addChiURLParams(r *http.Request, params map[string]string) *http.Request {
	ctx := chi.NewRouteContext()
	for k, v := range params {
		ctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, ctx))
}

func setupHandler(t *testing.T) (*api.ConversationHandler, *mock_interfaces.MockConversationService) {
	mockService := mock_interfaces.NewMockConversationService(t)
	return api.NewConversationHandler(mockService), mockService
}

func TestHandleListConversations(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler, mockService := setupHandler(t)

		summaries := []model.ConversationSummary{
			{ID: "conv1", Title: "First", MessageCount: 4},
		}
		mockService.On("ListConversations", mock.Anything).Return(summaries, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
		rr := httptest.NewRecorder()
		handler.HandleListConversations(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got []model.ConversationSummary
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, summaries, got)
	})

	t.Run("service failure", func(t *testing.T) {
		handler, mockService := setupHandler(t)
		mockService.On("ListConversations", mock.Anything).Return(nil, app_errors.ErrInternal).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
		rr := httptest.NewRecorder()
		handler.HandleListConversations(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestHandleCreateConversation(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		handler, mockService := setupHandler(t)

		conv := &model.Conversation{ID: "conv1", Title: "Trip planning", CreatedAt: time.Now().UTC()}
		mockService.On("CreateConversation", mock.Anything, "Trip planning", "be concise").
			Return(conv, nil).
			Once()

		body := `{"title":"Trip planning","custom_context":"be concise"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", strings.NewReader(body))
		rr := httptest.NewRecorder()
		handler.HandleCreateConversation(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		var got model.Conversation
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "conv1", got.ID)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		handler, mockService := setupHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", strings.NewReader("{not json"))
		rr := httptest.NewRecorder()
		handler.HandleCreateConversation(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "CreateConversation", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing title", func(t *testing.T) {
		handler, mockService := setupHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", strings.NewReader(`{"title":""}`))
		rr := httptest.NewRecorder()
		handler.HandleCreateConversation(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "CreateConversation", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleGetConversation(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		handler, mockService := setupHandler(t)

		full := &model.FullConversation{
			Conversation: model.Conversation{ID: "conv1", Title: "Test"},
			Messages:     []model.Message{{ID: "msg1", Role: model.RoleUser, Content: "hi"}},
			CurrentTheme: &model.Theme{ID: "foo", PrimaryColor: "#112233"},
		}
		mockService.On("GetFullConversation", mock.Anything, "conv1").Return(full, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/conv1", nil)
		req = addChiURLParams(req, map[string]string{"conversationID": "conv1"})
		rr := httptest.NewRecorder()
		handler.HandleGetConversation(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got model.FullConversation
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "conv1", got.ID)
		require.NotNil(t, got.CurrentTheme)
		assert.Equal(t, "#112233", got.CurrentTheme.PrimaryColor)
	})

	t.Run("not found", func(t *testing.T) {
		handler, mockService := setupHandler(t)
		mockService.On("GetFullConversation", mock.Anything, "missing").
			Return(nil, app_errors.ErrNotFound).
			Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/missing", nil)
		req = addChiURLParams(req, map[string]string{"conversationID": "missing"})
		rr := httptest.NewRecorder()
		handler.HandleGetConversation(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandleUpdateConversation(t *testing.T) {
	t.Run("updates title", func(t *testing.T) {
		handler, mockService := setupHandler(t)

		title := "Renamed"
		conv := &model.Conversation{ID: "conv1", Title: title}
		mockService.On("UpdateConversation", mock.Anything, "conv1", &title, (*string)(nil)).
			Return(conv, nil).
			Once()

		req := httptest.NewRequest(http.MethodPut, "/api/v1/conversations/conv1", strings.NewReader(`{"title":"Renamed"}`))
		req = addChiURLParams(req, map[string]string{"conversationID": "conv1"})
		rr := httptest.NewRecorder()
		handler.HandleUpdateConversation(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		handler, mockService := setupHandler(t)

		req := httptest.NewRequest(http.MethodPut, "/api/v1/conversations/conv1", strings.NewReader(`{"title":""}`))
		req = addChiURLParams(req, map[string]string{"conversationID": "conv1"})
		rr := httptest.NewRecorder()
		handler.HandleUpdateConversation(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "UpdateConversation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleDeleteConversation(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		handler, mockService := setupHandler(t)
		mockService.On("DeleteConversation", mock.Anything, "conv1").Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/conversations/conv1", nil)
		req = addChiURLParams(req, map[string]string{"conversationID": "conv1"})
		rr := httptest.NewRecorder()
		handler.HandleDeleteConversation(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("not found", func(t *testing.T) {
		handler, mockService := setupHandler(t)
		mockService.On("DeleteConversation", mock.Anything, "missing").
			Return(app_errors.ErrNotFound).
			Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/conversations/missing", nil)
		req = addChiURLParams(req, map[string]string{"conversationID": "missing"})
		rr := httptest.NewRecorder()
		handler.HandleDeleteConversation(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandleGetTheme(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		handler, mockService := setupHandler(t)

		theme := &model.Theme{ID: "foo", Name: "Foo", PrimaryColor: "#112233"}
		mockService.On("GetTheme", mock.Anything, "conv1").Return(theme, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/conv1/theme", nil)
		req = addChiURLParams(req, map[string]string{"conversationID": "conv1"})
		rr := httptest.NewRecorder()
		handler.HandleGetTheme(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got model.Theme
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "foo", got.ID)
	})

	t.Run("no theme yet", func(t *testing.T) {
		handler, mockService := setupHandler(t)
		mockService.On("GetTheme", mock.Anything, "conv1").
			Return(nil, app_errors.ErrNotFound).
			Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/conv1/theme", nil)
		req = addChiURLParams(req, map[string]string{"conversationID": "conv1"})
		rr := httptest.NewRecorder()
		handler.HandleGetTheme(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

// buildUpload builds a multipart body with one file part carrying an explicit
// content type.
func buildUpload(t *testing.T, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestHandleUploadContextFile(t *testing.T) {
	t.Run("accepts text file", func(t *testing.T) {
		handler, mockService := setupHandler(t)
		mockService.On("AppendContextFile", mock.Anything, "conv1", "notes.txt", "project notes").
			Return(nil).
			Once()

		body, contentType := buildUpload(t, "notes.txt", "text/plain", "project notes")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/conv1/files", body)
		req.Header.Set("Content-Type", contentType)
		req = addChiURLParams(req, map[string]string{"conversationID": "conv1"})
		rr := httptest.NewRecorder()
		handler.HandleUploadContextFile(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("rejects binary file", func(t *testing.T) {
		handler, mockService := setupHandler(t)

		body, contentType := buildUpload(t, "image.png", "image/png", "\x89PNG")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/conv1/files", body)
		req.Header.Set("Content-Type", contentType)
		req = addChiURLParams(req, map[string]string{"conversationID": "conv1"})
		rr := httptest.NewRecorder()
		handler.HandleUploadContextFile(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "AppendContextFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
