package main

import (
	"os"

	"moodchat/backend/internal/app"
)

// @title           MoodChat API
// @version         1.0
// @description     Chat backend with AI-generated conversation themes.
// @BasePath        /api/v1
func main() {
	os.Exit(app.Run())
}
