package domain

// JobKind names the kind of work the coordinator is running.
type JobKind string

const (
	JobKindNone    JobKind = "none"
	JobKindRender  JobKind = "render"
	JobKindPreview JobKind = "preview"
)

// JobStatus tracks the lifecycle of a single render or preview job.
type JobStatus string

const (
	JobStatusIdle      JobStatus = "idle"
	JobStatusStarting  JobStatus = "starting"
	JobStatusRunning   JobStatus = "running"
	JobStatusDone      JobStatus = "done"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Settings contains user-selectable runtime configuration.
type Settings struct {
	Quality             string `json:"quality"`
	FPS                 int    `json:"fps"`
	Format              string `json:"format"`
	Theme               string `json:"theme"`
	AutoSave            bool   `json:"autoSave"`
	AutoOpenOutput      bool   `json:"autoOpenOutput"`
	DefaultSaveLocation string `json:"defaultSaveLocation"`
}

// Job stores the current job identity, kind and lifecycle status.
type Job struct {
	ID     string    `json:"id"`
	Kind   JobKind   `json:"kind"`
	Status JobStatus `json:"status"`
}
