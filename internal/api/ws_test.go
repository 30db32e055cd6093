package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"moodchat/backend/internal/api"
	app_errors "moodchat/backend/internal/errors"
	mock_interfaces "moodchat/backend/internal/interfaces/mocks"
	"moodchat/backend/internal/model"
	"moodchat/backend/internal/service"
)

func setupWSServer(t *testing.T) (*httptest.Server, *mock_interfaces.MockConversationService) {
	mockService := mock_interfaces.NewMockConversationService(t)
	router := api.NewRouter(api.NewConversationHandler(mockService))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, mockService
}

func dialWS(t *testing.T, server *httptest.Server, conversationID string) *websocket.Conn {
	t.Helper()
	wsURL := strings.Replace(server.URL, "http", "ws", 1) + "/ws/" + conversationID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) model.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event model.Event
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestWebSocket_TurnEventOrdering(t *testing.T) {
	server, mockService := setupWSServer(t)

	mockService.On("GetFullConversation", mock.Anything, "conv1").
		Return(&model.FullConversation{Conversation: model.Conversation{ID: "conv1"}}, nil).
		Once()
	mockService.On("HandleUserMessage", mock.Anything, "conv1", "hello", mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			notifier := args.Get(3).(service.Notifier)
			notifier.Send(model.Event{Type: model.EventStart})
			notifier.Send(model.Event{Type: model.EventChunk, Content: "Hi "})
			notifier.Send(model.Event{Type: model.EventChunk, Content: "there!"})
			notifier.Send(model.Event{Type: model.EventEnd, Content: "Hi there!"})
		}).
		Once()

	conn := dialWS(t, server, "conv1")
	require.NoError(t, conn.WriteJSON(map[string]string{"message": "hello"}))

	assert.Equal(t, model.EventStart, readEvent(t, conn).Type)

	chunk := readEvent(t, conn)
	assert.Equal(t, model.EventChunk, chunk.Type)
	assert.Equal(t, "Hi ", chunk.Content)

	chunk = readEvent(t, conn)
	assert.Equal(t, model.EventChunk, chunk.Type)
	assert.Equal(t, "there!", chunk.Content)

	end := readEvent(t, conn)
	assert.Equal(t, model.EventEnd, end.Type)
	assert.Equal(t, "Hi there!", end.Content)
}

func TestWebSocket_UnknownConversationRejectsUpgrade(t *testing.T) {
	server, mockService := setupWSServer(t)

	mockService.On("GetFullConversation", mock.Anything, "missing").
		Return(nil, app_errors.ErrNotFound).
		Once()

	wsURL := strings.Replace(server.URL, "http", "ws", 1) + "/ws/missing"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if conn != nil {
		conn.Close()
	}
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocket_InvalidPayload(t *testing.T) {
	server, mockService := setupWSServer(t)

	mockService.On("GetFullConversation", mock.Anything, "conv1").
		Return(&model.FullConversation{Conversation: model.Conversation{ID: "conv1"}}, nil).
		Once()

	conn := dialWS(t, server, "conv1")
	require.NoError(t, conn.WriteJSON(map[string]string{"message": ""}))

	event := readEvent(t, conn)
	assert.Equal(t, model.EventError, event.Type)
	mockService.AssertNotCalled(t, "HandleUserMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Theme events from a detached task ride the same connection as turn events.
func TestWebSocket_ThemeEventsInterleave(t *testing.T) {
	server, mockService := setupWSServer(t)

	mockService.On("GetFullConversation", mock.Anything, "conv1").
		Return(&model.FullConversation{Conversation: model.Conversation{ID: "conv1"}}, nil).
		Once()

	themeDone := make(chan struct{})
	mockService.On("HandleUserMessage", mock.Anything, "conv1", "hello", mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			notifier := args.Get(3).(service.Notifier)
			notifier.Send(model.Event{Type: model.EventStart})
			notifier.Send(model.Event{Type: model.EventEnd})
			go func() {
				defer close(themeDone)
				notifier.Send(model.Event{Type: model.EventThemeGenerating})
				notifier.Send(model.Event{
					Type:  model.EventThemeUpdate,
					Theme: &model.Theme{ID: "foo", PrimaryColor: "#112233"},
				})
			}()
		}).
		Once()

	conn := dialWS(t, server, "conv1")
	require.NoError(t, conn.WriteJSON(map[string]string{"message": "hello"}))

	assert.Equal(t, model.EventStart, readEvent(t, conn).Type)
	assert.Equal(t, model.EventEnd, readEvent(t, conn).Type)
	assert.Equal(t, model.EventThemeGenerating, readEvent(t, conn).Type)

	update := readEvent(t, conn)
	assert.Equal(t, model.EventThemeUpdate, update.Type)
	require.NotNil(t, update.Theme)
	assert.Equal(t, "#112233", update.Theme.PrimaryColor)

	select {
	case <-themeDone:
	case <-time.After(2 * time.Second):
		t.Fatal("theme events were never delivered")
	}
}
