package bootstrap

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"anim-studio/internal/assets"
	"anim-studio/internal/autosave"
	"anim-studio/internal/config"
	"anim-studio/internal/diagnostics"
	"anim-studio/internal/domain"
	"anim-studio/internal/jobs"
	"anim-studio/internal/render"
	"anim-studio/internal/server"
	"anim-studio/internal/system"
	"anim-studio/internal/terminal"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

const (
	appDirName          = ".anim-studio"
	autosaveInterval    = 30 * time.Second
	performanceInterval = 2 * time.Second
	resizeDebounceDelay = 250 * time.Millisecond
	runCommandTimeout   = 5 * time.Minute

	// Preview jobs always render a low fidelity draft profile.
	previewQuality = "480p"
	previewFPS     = 15

	// feedAddrEnv enables the WebSocket push feed when set to a listen
	// address. The feed stays off without it.
	feedAddrEnv = "ANIM_STUDIO_WS_ADDR"
)

// ErrDeleteNotConfirmed is returned when an asset delete arrives without
// user confirmation.
var ErrDeleteNotConfirmed = errors.New("delete requires confirmation")

// ErrEmptySceneCode is returned when a render or preview starts with a
// blank editor buffer.
var ErrEmptySceneCode = errors.New("scene code is empty")

var scriptDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Python scenes",
		Pattern:     "*.py",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

var assetDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Asset files",
		Pattern:     "*.mp4;*.mov;*.webm;*.png;*.jpg;*.jpeg;*.gif;*.svg;*.mp3;*.wav;*.ogg;*.ttf;*.otf;*.woff;*.woff2;*.srt;*.vtt;*.txt;*.md;*.json",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// App wires configuration, jobs, the render pipeline, the terminal
// session, autosave, the asset library, and UI runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Jobs        *jobs.Manager
	Pipeline    pipelineRunner
	Diagnostics domain.DiagnosticReport
	Terminal    *terminal.Session
	Autosave    *autosave.Service
	Snapshots   *autosave.Store
	Library     *assets.Store
	Monitor     *system.Monitor
	Feed        *server.Server

	frontend fs.FS
	checker  *diagnostics.Checker

	dataDir   string
	assetsDir string
	mediaDir  string

	mu          sync.Mutex
	activeJobID string
	cancel      context.CancelFunc
	events      *jobs.EventBus
	runtimeCtx  context.Context
	editorCode  string
	editorPath  string
	resizeCols  int
	resizeRows  int

	resizeApply func(f func())
}

// pipelineRunner isolates the render pipeline behind an interface.
type pipelineRunner interface {
	Run(ctx context.Context, req render.Request) (render.Result, error)
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(frontendAssets fs.FS) (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}
	if err := ensureLocalBinOnPATH(homeDir); err != nil {
		return nil, fmt.Errorf("prepare local tool path: %w", err)
	}

	dataDir := filepath.Join(homeDir, appDirName)
	store := config.NewJSONStore(filepath.Join(dataDir, "settings.json"))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	assetsDir := filepath.Join(dataDir, "assets")
	mediaDir := filepath.Join(dataDir, "media")

	checker := diagnostics.NewChecker()
	report := checker.Run(settings, assetsDir)

	snapshots := autosave.NewStore(filepath.Join(dataDir, "autosaves"))

	app := &App{
		Settings:    settings,
		Store:       store,
		Jobs:        jobs.NewManager(),
		Pipeline:    render.NewPipeline(),
		Diagnostics: report,
		Terminal:    terminal.NewSession(homeDir),
		Snapshots:   snapshots,
		Library:     assets.NewStore(assetsDir),
		Monitor:     system.NewMonitor(performanceInterval),
		Feed:        server.NewServer(server.NewHub()),
		frontend:    frontendAssets,
		checker:     checker,
		dataDir:     dataDir,
		assetsDir:   assetsDir,
		mediaDir:    mediaDir,
		events:      jobs.NewEventBus(1000),
		resizeApply: debounce.New(resizeDebounceDelay),
	}

	app.Autosave = autosave.NewService(snapshots, autosaveInterval, app.editorSnapshot)
	app.Autosave.SetStateHandler(app.pushAutosaveState)
	app.Terminal.SetOutputHandler(app.pushTerminalOutput)
	app.Terminal.SetExitHandler(app.pushTerminalExit)

	return app, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.frontend != nil {
		assetOptions.Assets = a.frontend
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Anim Studio",
		Width:       1280,
		Height:      800,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown:  a.Shutdown,
		Bind:        []interface{}{a},
	})
}

// Startup stores the Wails runtime context and brings up the background
// services.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.runtimeCtx = ctx
	autoSave := a.Settings.AutoSave
	a.mu.Unlock()

	if err := a.Terminal.Start(); err != nil {
		a.pushFrame("terminal:error", map[string]string{"message": err.Error()})
	}
	if autoSave {
		a.Autosave.Start()
	}
	a.Monitor.Start()

	// The push feed is optional; polling keeps working without it.
	_ = a.Feed.Start(os.Getenv(feedAddrEnv))
}

// Shutdown stops background services. The terminal close is deliberate,
// so no exit notice reaches the UI.
func (a *App) Shutdown(ctx context.Context) {
	a.Autosave.Stop()
	_ = a.Terminal.Close()
	a.Monitor.Stop()
	_ = a.Feed.Stop()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = nil
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reloads settings and reruns dependency checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	return a.refreshDiagnosticsFromSettings(settings), nil
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()
	return settings, nil
}

// UpdateSettings normalizes and persists settings, refreshes diagnostics,
// applies the autosave toggle, and broadcasts the accepted values.
func (a *App) UpdateSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.refreshDiagnosticsFromSettings(normalized)

	if a.Autosave != nil {
		if normalized.AutoSave {
			a.Autosave.Start()
		} else {
			a.Autosave.Stop()
		}
	}

	a.pushFrame("settings:updated", normalized)
	return normalized, nil
}

// ChooseScriptFile opens a native file dialog for scene script selection.
func (a *App) ChooseScriptFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select scene script",
		Filters: scriptDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// ChooseSaveLocation opens a native directory picker for the default save
// location.
func (a *App) ChooseSaveLocation() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select save location",
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickAssetFile opens a native file dialog for asset uploads.
func (a *App) PickAssetFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select asset file",
		Filters: assetDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// OpenOutputFolder opens the given path (or the media directory) in the
// platform file manager.
func (a *App) OpenOutputFolder(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		target = a.mediaDir
	}
	if target == "" {
		return fmt.Errorf("output path is empty")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	openPath := target
	if !info.IsDir() {
		openPath = filepath.Dir(target)
	}

	return openInFileManager(openPath)
}

// OpenAssetsFolder opens the asset library in the platform file manager.
func (a *App) OpenAssetsFolder() error {
	if err := os.MkdirAll(a.assetsDir, 0o755); err != nil {
		return fmt.Errorf("create asset directory: %w", err)
	}
	return openInFileManager(a.assetsDir)
}

// OpenAutosaveFolder opens the snapshot directory in the platform file
// manager.
func (a *App) OpenAutosaveFolder() error {
	dir := a.Snapshots.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create autosave directory: %w", err)
	}
	return openInFileManager(dir)
}

// StartRender creates a render job and runs it asynchronously. A second
// start while a job is active is rejected, never queued.
func (a *App) StartRender(code, sceneName string, useGPU bool) (domain.Job, error) {
	if strings.TrimSpace(code) == "" {
		return domain.Job{}, ErrEmptySceneCode
	}

	settings, err := a.loadNormalizedSettings()
	if err != nil {
		return domain.Job{}, err
	}
	return a.startJob(domain.JobKindRender, code, sceneName, settings.Quality, useGPU, settings)
}

// StartPreview renders a fast draft of the scene at preview quality and
// frame rate.
func (a *App) StartPreview(code, sceneName string) (domain.Job, error) {
	if strings.TrimSpace(code) == "" {
		return domain.Job{}, ErrEmptySceneCode
	}

	settings, err := a.loadNormalizedSettings()
	if err != nil {
		return domain.Job{}, err
	}

	settings.FPS = previewFPS
	return a.startJob(domain.JobKindPreview, code, sceneName, previewQuality, false, settings)
}

// StopJob requests cancellation of the active job. Stopping with nothing
// running is not an error; the caller gets a notice instead.
func (a *App) StopJob() (string, error) {
	a.mu.Lock()
	cancel := a.cancel
	activeJobID := a.activeJobID
	a.mu.Unlock()

	if cancel == nil {
		return "No active job to stop.", nil
	}

	cancel()
	if err := a.Jobs.Cancel(); err != nil && !errors.Is(err, jobs.ErrNoRunningJob) {
		return "", err
	}

	if activeJobID != "" {
		a.publishStatus(activeJobID, domain.JobStatusCancelled, "Stop requested")
	}
	return "Stop requested.", nil
}

// CurrentJob returns current job metadata and status.
func (a *App) CurrentJob() domain.Job {
	return a.Jobs.Current()
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// startJob claims the single job slot and launches the pipeline.
func (a *App) startJob(kind domain.JobKind, code, sceneName, quality string, useGPU bool, settings domain.Settings) (domain.Job, error) {
	jobID := uuid.NewString()
	if err := a.Jobs.Start(jobID, kind); err != nil {
		return domain.Job{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.activeJobID = jobID
	a.cancel = cancel
	a.mu.Unlock()

	a.publishStatus(jobID, domain.JobStatusStarting, "Job started")

	go a.runRenderJob(ctx, jobID, code, sceneName, quality, useGPU, settings)
	return a.Jobs.Current(), nil
}

// runRenderJob executes the pipeline and maps outcomes to job events.
func (a *App) runRenderJob(ctx context.Context, jobID, code, sceneName, quality string, useGPU bool, settings domain.Settings) {
	req := render.Request{
		Code:      code,
		SceneName: sceneName,
		Quality:   quality,
		FPS:       settings.FPS,
		Format:    settings.Format,
		UseGPU:    useGPU,
		MediaDir:  a.mediaDir,
		OnStage: func(stage string) {
			status, ok := mapStageToStatus(stage)
			if !ok {
				return
			}
			if err := a.Jobs.Transition(status); err == nil {
				a.publishStatus(jobID, status, "Running "+stage+" stage")
			}
		},
		OnLog: func(log render.CommandLog) {
			a.publishEvent(jobs.Event{
				JobID:    jobID,
				Type:     jobs.EventTypeLog,
				Message:  "Command completed",
				Command:  log.Command,
				Args:     log.Args,
				ExitCode: log.ExitCode,
				Stdout:   log.Stdout,
				Stderr:   log.Stderr,
			})
		},
	}

	result, err := a.Pipeline.Run(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			_ = a.Jobs.Transition(domain.JobStatusCancelled)
			a.publishStatus(jobID, domain.JobStatusCancelled, "Job cancelled")
			a.clearActiveJob(jobID)
			return
		}

		_ = a.Jobs.Transition(domain.JobStatusFailed)
		a.publishStatus(jobID, domain.JobStatusFailed, "Job failed")
		a.publishEvent(jobs.Event{
			JobID:   jobID,
			Type:    jobs.EventTypeError,
			Status:  domain.JobStatusFailed,
			Message: err.Error(),
		})

		var pipelineErr *render.PipelineError
		if errors.As(err, &pipelineErr) && pipelineErr.CommandLog.Command != "" {
			a.publishEvent(jobs.Event{
				JobID:    jobID,
				Type:     jobs.EventTypeLog,
				Message:  "Failed command",
				Command:  pipelineErr.CommandLog.Command,
				Args:     pipelineErr.CommandLog.Args,
				ExitCode: pipelineErr.CommandLog.ExitCode,
				Stdout:   pipelineErr.CommandLog.Stdout,
				Stderr:   pipelineErr.CommandLog.Stderr,
			})
		}

		a.clearActiveJob(jobID)
		return
	}

	if cleanupErr := result.Cleanup(); cleanupErr != nil {
		a.publishEvent(jobs.Event{
			JobID:   jobID,
			Type:    jobs.EventTypeError,
			Message: fmt.Sprintf("cleanup temporary files: %v", cleanupErr),
		})
	}

	if err := a.Jobs.Transition(domain.JobStatusDone); err == nil {
		a.publishStatus(jobID, domain.JobStatusDone, "Job completed")
	}
	a.publishEvent(jobs.Event{
		JobID:      jobID,
		Type:       jobs.EventTypeResult,
		Status:     domain.JobStatusDone,
		Message:    "Scene rendered",
		OutputPath: result.OutputPath,
	})

	if settings.AutoOpenOutput && result.OutputPath != "" {
		_ = openInFileManager(filepath.Dir(result.OutputPath))
	}
	a.clearActiveJob(jobID)
}

// StartTerminal launches the shell session if it is not already running.
func (a *App) StartTerminal() (domain.TerminalState, error) {
	if err := a.Terminal.Start(); err != nil {
		return a.Terminal.State(), err
	}
	return a.Terminal.State(), nil
}

// TerminalState reports the current terminal size and connection status.
func (a *App) TerminalState() domain.TerminalState {
	return a.Terminal.State()
}

// SendTerminalInput forwards keystrokes to the shell, starting the
// session first when it is not running. The UI sends input base64
// encoded; payloads that do not decode pass through as raw bytes.
func (a *App) SendTerminalInput(data string) error {
	if !a.Terminal.IsRunning() {
		if err := a.Terminal.Start(); err != nil {
			return err
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		decoded = []byte(data)
	}
	return a.Terminal.Write(decoded)
}

// InterruptTerminal sends Ctrl+C to the shell.
func (a *App) InterruptTerminal() error {
	return a.Terminal.Interrupt()
}

// ReadTerminalOutput drains buffered output for polling clients. Empty
// output during idle periods is normal.
func (a *App) ReadTerminalOutput() domain.TerminalRead {
	return a.Terminal.Drain()
}

// ResizeTerminal schedules a debounced PTY resize. Rapid resize bursts
// collapse into one syscall and unchanged sizes are skipped.
func (a *App) ResizeTerminal(cols, rows int) error {
	a.mu.Lock()
	a.resizeCols = cols
	a.resizeRows = rows
	a.mu.Unlock()

	a.resizeApply(func() {
		a.mu.Lock()
		c, r := a.resizeCols, a.resizeRows
		a.mu.Unlock()
		_ = a.Terminal.Resize(c, r)
	})
	return nil
}

// HandleLocalCommand reports whether a command is handled entirely inside
// the UI, with no shell round trip.
func (a *App) HandleLocalCommand(command string) bool {
	return terminal.IsLocalCommand(command)
}

// RunCommand executes a one-shot command outside the interactive session.
func (a *App) RunCommand(command string) (domain.CommandResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), runCommandTimeout)
	defer cancel()
	return terminal.RunCommand(ctx, command)
}

// MarkEditorDirty records the latest editor buffer and flips the autosave
// indicator to unsaved.
func (a *App) MarkEditorDirty(code, filePath string) {
	a.mu.Lock()
	a.editorCode = code
	a.editorPath = filePath
	a.mu.Unlock()

	a.Autosave.MarkDirty()
}

// AutosaveNow saves a snapshot immediately if the editor is dirty and
// non-empty. It reports whether a snapshot was written.
func (a *App) AutosaveNow() (bool, error) {
	return a.Autosave.SaveNow()
}

// AutosaveState returns the current indicator state.
func (a *App) AutosaveState() domain.AutosaveState {
	return a.Autosave.State()
}

// ListAutosaves returns stored snapshots, newest first.
func (a *App) ListAutosaves() ([]domain.AutosaveRecord, error) {
	return a.Snapshots.List()
}

// LoadAutosave loads one snapshot into the editor baseline.
func (a *App) LoadAutosave(key string) (domain.AutosaveRecord, error) {
	record, err := a.Snapshots.Load(key)
	if err != nil {
		return domain.AutosaveRecord{}, err
	}
	a.adoptSnapshot(record)
	return record, nil
}

// DeleteAutosave removes one stored snapshot.
func (a *App) DeleteAutosave(key string) error {
	return a.Snapshots.Delete(key)
}

// DeleteAllAutosaves discards every stored snapshot and reports the count.
func (a *App) DeleteAllAutosaves() (int, error) {
	return a.Autosave.DiscardAll()
}

// RecoverLatestAutosave restores the newest snapshot after a crash. The
// caller may instead call DeleteAllAutosaves to discard the recovery set.
func (a *App) RecoverLatestAutosave() (domain.AutosaveRecord, error) {
	record, err := a.Autosave.Latest()
	if err != nil {
		return domain.AutosaveRecord{}, err
	}
	a.adoptSnapshot(record)
	return record, nil
}

// adoptSnapshot seeds the editor buffer and autosave baseline from a
// stored snapshot.
func (a *App) adoptSnapshot(record domain.AutosaveRecord) {
	a.mu.Lock()
	a.editorCode = record.Code
	a.editorPath = record.FilePath
	a.mu.Unlock()

	a.Autosave.Seed(record.Code)
}

// ListAssets re-reads the library directory and returns the new list.
func (a *App) ListAssets() ([]domain.Asset, error) {
	return a.Library.Refresh()
}

// FilterAssets narrows the cached library list by name substring and
// category without rescanning the directory.
func (a *App) FilterAssets(query, category string) []domain.Asset {
	return a.Library.Filter(query, category)
}

// UploadAsset copies a file into the library and returns the new entry.
func (a *App) UploadAsset(srcPath string) (domain.Asset, error) {
	return a.Library.Upload(srcPath)
}

// UploadAssetContent stores encoded upload bytes as a new library file.
func (a *App) UploadAssetContent(name, base64Content string) (domain.Asset, error) {
	return a.Library.UploadContent(name, base64Content)
}

// DeleteAsset removes a library file. The confirmed flag must be set by
// the UI after the user approved the dialog.
func (a *App) DeleteAsset(path string, confirmed bool) error {
	if !confirmed {
		return ErrDeleteNotConfirmed
	}
	return a.Library.Delete(path)
}

// PreviewAsset builds the category-specific preview payload for one file.
func (a *App) PreviewAsset(path string) (domain.AssetPreview, error) {
	return a.Library.Preview(path)
}

// GetSystemInfo reports static host details and working directories.
func (a *App) GetSystemInfo() domain.SystemInfo {
	return system.Info(a.mediaDir, a.assetsDir)
}

// GetPerformance returns the most recent host resource sample.
func (a *App) GetPerformance() domain.PerformanceSnapshot {
	return a.Monitor.Snapshot()
}

// editorSnapshot supplies the current editor buffer to the autosave loop.
func (a *App) editorSnapshot() (string, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.editorCode, a.editorPath
}

// loadNormalizedSettings loads settings and applies normalization rules.
func (a *App) loadNormalizedSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	normalized := normalizeSettings(settings)
	a.mu.Lock()
	a.Settings = normalized
	a.mu.Unlock()
	return normalized, nil
}

// publishStatus sends a normalized status event.
func (a *App) publishStatus(jobID string, status domain.JobStatus, message string) {
	a.publishEvent(jobs.Event{
		JobID:   jobID,
		Type:    jobs.EventTypeStatus,
		Status:  status,
		Message: message,
	})
}

// publishEvent stores event history and pushes the event to subscribers.
func (a *App) publishEvent(event jobs.Event) {
	published := a.events.Publish(event)
	a.pushFrame("job:event", published)
}

// pushFrame emits one payload to the UI runtime and the WebSocket feed.
func (a *App) pushFrame(topic string, payload any) {
	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, topic, payload)
	}
	if a.Feed != nil {
		a.Feed.Hub().Broadcast(topic, payload)
	}
}

// pushTerminalOutput forwards shell output to push subscribers as base64
// so control bytes survive the JSON transport. Polling readers drain the
// same bytes through ReadTerminalOutput.
func (a *App) pushTerminalOutput(data []byte) {
	a.pushFrame("terminal:output", map[string]string{
		"data": base64.StdEncoding.EncodeToString(data),
	})
}

// pushTerminalExit reports an unexpected shell exit.
func (a *App) pushTerminalExit() {
	a.pushFrame("terminal:exit", map[string]bool{"connected": false})
}

// pushAutosaveState forwards indicator changes to the UI.
func (a *App) pushAutosaveState(state domain.AutosaveState) {
	a.pushFrame("autosave:state", state)
}

// clearActiveJob clears cancellation handles for completed job IDs.
func (a *App) clearActiveJob(jobID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.activeJobID == jobID {
		a.activeJobID = ""
		a.cancel = nil
	}
}

// mapStageToStatus maps pipeline stage names to job statuses.
func mapStageToStatus(stage string) (domain.JobStatus, bool) {
	switch stage {
	case "preparing":
		return domain.JobStatusStarting, true
	case "rendering":
		return domain.JobStatusRunning, true
	default:
		return "", false
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// normalizeSettings applies the accepted value sets, falling back to
// defaults for anything out of range.
func normalizeSettings(settings domain.Settings) domain.Settings {
	settings.Quality = strings.TrimSpace(settings.Quality)
	if !render.IsKnownQuality(settings.Quality) {
		settings.Quality = "1080p"
	}

	if settings.FPS <= 0 {
		settings.FPS = 60
	}
	if settings.FPS > 240 {
		settings.FPS = 240
	}

	settings.Format = strings.ToLower(strings.TrimSpace(settings.Format))
	switch settings.Format {
	case "mp4", "gif", "png", "webm":
	default:
		settings.Format = "mp4"
	}

	settings.Theme = strings.ToLower(strings.TrimSpace(settings.Theme))
	if settings.Theme != "dark" && settings.Theme != "light" {
		settings.Theme = "dark"
	}

	settings.DefaultSaveLocation = strings.TrimSpace(settings.DefaultSaveLocation)
	if settings.DefaultSaveLocation == "" {
		settings.DefaultSaveLocation = config.DefaultSettings().DefaultSaveLocation
	}

	return settings
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
