package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodchat/backend/internal/config"
)

func TestNewApp(t *testing.T) {
	cfg := &config.Config{
		AppPort:               8123,
		DatabasePath:          filepath.Join(t.TempDir(), "test.db"),
		OllamaURL:             "http://localhost:11434",
		ChatModel:             "chat-model",
		DesignModel:           "design-model",
		CodeModel:             "code-model",
		ThemeEvery:            2,
		ThemeWindow:           6,
		ChatWindow:            20,
		RequestTimeoutSeconds: 30,
	}

	application, err := NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { application.DB.Close() })

	assert.NotNil(t, application.DB)
	require.NotNil(t, application.Server)
	assert.Equal(t, ":8123", application.Server.Addr)
	assert.NotNil(t, application.Server.Handler)

	// The schema is in place after wiring: the migrated tables exist.
	var name string
	err = application.DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='conversations'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "conversations", name)
}
