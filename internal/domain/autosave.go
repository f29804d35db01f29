package domain

import "time"

// AutosaveIndicator is the tri-state save indicator shown in the editor.
type AutosaveIndicator string

const (
	AutosaveIndicatorSaved   AutosaveIndicator = "saved"
	AutosaveIndicatorSaving  AutosaveIndicator = "saving"
	AutosaveIndicatorUnsaved AutosaveIndicator = "unsaved"
)

// AutosaveRecord is one persisted editor snapshot.
type AutosaveRecord struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	FilePath  string    `json:"filePath,omitempty"`
	Code      string    `json:"code,omitempty"`
}

// AutosaveState reports the save indicator and the last successful save.
// Error carries the reason the most recent save attempt failed and is
// cleared by the next successful save.
type AutosaveState struct {
	Indicator   AutosaveIndicator `json:"indicator"`
	LastSavedAt time.Time         `json:"lastSavedAt,omitempty"`
	LastKey     string            `json:"lastKey,omitempty"`
	Error       string            `json:"error,omitempty"`
}
