package app

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"moodchat/backend/internal/api"
	"moodchat/backend/internal/config"
	"moodchat/backend/internal/database"
	"moodchat/backend/internal/llm"
	"moodchat/backend/internal/repository"
	"moodchat/backend/internal/service"
)

// App holds the wired application: the open database handle and the HTTP
// server ready to listen.
type App struct {
	DB     *sql.DB
	Server *http.Server
}

// NewApp builds the dependency graph from a loaded configuration.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	repo := repository.NewSQLiteRepository(db)
	ollamaProvider := llm.NewOllamaProvider(cfg.OllamaURL, timeout)

	themeService := service.NewThemeService(repo, ollamaProvider, service.Options{
		DesignModel: cfg.DesignModel,
		CodeModel:   cfg.CodeModel,
		Window:      cfg.ThemeWindow,
		Timeout:     timeout,
	})
	chatService := service.NewChatService(repo, ollamaProvider, themeService, service.ChatOptions{
		ChatModel:  cfg.ChatModel,
		ChatWindow: cfg.ChatWindow,
		ThemeEvery: cfg.ThemeEvery,
		Timeout:    timeout,
	})

	conversationHandler := api.NewConversationHandler(chatService)
	router := api.NewRouter(conversationHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled: the websocket route holds connections open.
		IdleTimeout:       120 * time.Second,
	}

	return &App{DB: db, Server: server}, nil
}

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured; the default logger has to do here.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)
	logConfigSource()

	waitForOllama(cfg.OllamaURL)

	application, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to build application", "error", err)
		return 1
	}
	defer func() {
		if err := application.DB.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()
	slog.Info("Successfully connected to SQLite database.")

	slog.Info("Starting server", "port", cfg.AppPort)
	if err := application.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		return 1
	}

	return 0
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func waitForOllama(ollamaURL string) {
	slog.Info("Waiting for Ollama to be ready...")
	client := &http.Client{Timeout: 2 * time.Second}
	for {
		resp, err := client.Get(ollamaURL)
		if err == nil && resp.StatusCode == http.StatusOK {
			if bErr := resp.Body.Close(); bErr != nil {
				slog.Warn("Failed to close response body in ollama health check", "error", bErr)
			}
			slog.Info("Ollama is ready.")
			return
		}
		if resp != nil {
			if bErr := resp.Body.Close(); bErr != nil {
				slog.Warn("Failed to close response body in ollama health check (retry path)", "error", bErr)
			}
		}
		slog.Debug("Ollama not ready yet, retrying in 3 seconds...", "url", ollamaURL, "error", err)
		time.Sleep(3 * time.Second)
	}
}
