package autosave

import (
	"strings"
	"sync"
	"time"

	"anim-studio/internal/domain"
)

// Service saves editor snapshots on a fixed interval. A snapshot is
// written only when the code is non-empty and differs from the last saved
// one; the tri-state indicator is owned exclusively by this service.
type Service struct {
	mu        sync.Mutex
	store     *Store
	interval  time.Duration
	source    func() (code string, filePath string)
	onState   func(state domain.AutosaveState)
	lastSaved string
	indicator domain.AutosaveIndicator
	lastKey   string
	lastAt    time.Time
	lastErr   string
	stopCh    chan struct{}
	running   bool
}

// NewService creates a stopped autosave service. source supplies the
// current editor code and its file path on every tick.
func NewService(store *Store, interval time.Duration, source func() (string, string)) *Service {
	return &Service{
		store:     store,
		interval:  interval,
		source:    source,
		indicator: domain.AutosaveIndicatorSaved,
	}
}

// SetStateHandler registers a callback invoked on indicator changes.
func (s *Service) SetStateHandler(handler func(state domain.AutosaveState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onState = handler
}

// Start launches the interval loop. Starting a running service or one
// with a non-positive interval is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || s.interval <= 0 {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	go s.loop(s.stopCh, s.interval)
}

// Stop halts the interval loop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
}

// IsRunning reports whether the interval loop is active.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Restart applies a new interval, stopping first when running.
func (s *Service) Restart(interval time.Duration) {
	s.Stop()
	s.mu.Lock()
	s.interval = interval
	s.mu.Unlock()
	s.Start()
}

// loop ticks until stopped.
func (s *Service) loop(stopCh chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.SaveNow()
		case <-stopCh:
			return
		}
	}
}

// SaveNow saves one snapshot if the editor is dirty and non-empty. It
// reports whether a snapshot was written.
func (s *Service) SaveNow() (bool, error) {
	code, filePath := s.source()

	s.mu.Lock()
	if strings.TrimSpace(code) == "" || code == s.lastSaved {
		s.mu.Unlock()
		return false, nil
	}
	notify := s.setIndicatorLocked(domain.AutosaveIndicatorSaving)
	s.mu.Unlock()
	run(notify)

	record, err := s.store.Save(code, filePath)

	s.mu.Lock()
	if err != nil {
		// Record the reason before the indicator flips so the state
		// notification carries it.
		s.lastErr = err.Error()
		notify = s.setIndicatorLocked(domain.AutosaveIndicatorUnsaved)
		s.mu.Unlock()
		run(notify)
		return false, err
	}

	s.lastSaved = code
	s.lastKey = record.Key
	s.lastAt = record.Timestamp
	s.lastErr = ""
	notify = s.setIndicatorLocked(domain.AutosaveIndicatorSaved)
	s.mu.Unlock()
	run(notify)
	return true, nil
}

// MarkDirty flips the indicator to unsaved after an editor change.
func (s *Service) MarkDirty() {
	s.mu.Lock()
	if s.indicator == domain.AutosaveIndicatorSaving {
		s.mu.Unlock()
		return
	}
	notify := s.setIndicatorLocked(domain.AutosaveIndicatorUnsaved)
	s.mu.Unlock()
	run(notify)
}

// Seed replaces the clean snapshot baseline, marking the editor saved.
// Used after loading a file or adopting a recovered snapshot.
func (s *Service) Seed(code string) {
	s.mu.Lock()
	s.lastSaved = code
	notify := s.setIndicatorLocked(domain.AutosaveIndicatorSaved)
	s.mu.Unlock()
	run(notify)
}

// State returns the current indicator snapshot.
func (s *Service) State() domain.AutosaveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Latest returns the newest stored snapshot for startup recovery.
func (s *Service) Latest() (domain.AutosaveRecord, error) {
	return s.store.Latest()
}

// DiscardAll deletes every stored snapshot and reports the count.
func (s *Service) DiscardAll() (int, error) {
	return s.store.DeleteAll()
}

// setIndicatorLocked updates the indicator and returns the notification
// to deliver once the lock is released, keeping state events in order.
// Callers must hold s.mu.
func (s *Service) setIndicatorLocked(indicator domain.AutosaveIndicator) func() {
	if s.indicator == indicator {
		return nil
	}
	s.indicator = indicator

	if s.onState == nil {
		return nil
	}
	handler := s.onState
	state := s.stateLocked()
	return func() { handler(state) }
}

// run executes a pending notification.
func run(notify func()) {
	if notify != nil {
		notify()
	}
}

// stateLocked builds a state snapshot. Callers must hold s.mu.
func (s *Service) stateLocked() domain.AutosaveState {
	return domain.AutosaveState{
		Indicator:   s.indicator,
		LastSavedAt: s.lastAt,
		LastKey:     s.lastKey,
		Error:       s.lastErr,
	}
}
