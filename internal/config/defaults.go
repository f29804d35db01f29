package config

import (
	"os"
	"path/filepath"

	"anim-studio/internal/domain"
)

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		Quality:             "1080p",
		FPS:                 60,
		Format:              "mp4",
		Theme:               "dark",
		AutoSave:            true,
		AutoOpenOutput:      false,
		DefaultSaveLocation: filepath.Join(homeDir, "Documents", "AnimStudio"),
	}
}
