package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/creack/pty"

	"anim-studio/internal/domain"
)

// ErrNotRunning is returned when input is sent to a stopped session.
var ErrNotRunning = errors.New("terminal session is not running")

const (
	defaultCols = 120
	defaultRows = 30
	minCols     = 10
	minRows     = 5

	// maxPendingBytes caps the poll buffer; oldest output is dropped first.
	maxPendingBytes = 1 << 20
)

// Session wraps a shell process behind a pseudo terminal. Output is kept
// in a drainable buffer for polling readers and forwarded to an optional
// push handler as it arrives.
type Session struct {
	mu       sync.Mutex
	cmd      *exec.Cmd
	ptmx     *os.File
	input    io.Writer
	running  bool
	closing  bool
	cols     int
	rows     int
	pending  []byte
	onOutput func(data []byte)
	onExit   func()
	workDir  string
	shell    string
	startPTY func(cmd *exec.Cmd) (*os.File, error)
	setSize  func(ptmx *os.File, cols, rows int) error
}

// NewSession creates a stopped session rooted at workDir.
func NewSession(workDir string) *Session {
	return &Session{
		cols:     defaultCols,
		rows:     defaultRows,
		workDir:  workDir,
		startPTY: pty.Start,
		setSize: func(ptmx *os.File, cols, rows int) error {
			return pty.Setsize(ptmx, &pty.Winsize{
				Rows: uint16(rows),
				Cols: uint16(cols),
			})
		},
	}
}

// SetOutputHandler registers the push callback for terminal output.
func (s *Session) SetOutputHandler(handler func(data []byte)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onOutput = handler
}

// SetExitHandler registers the callback invoked when the shell exits.
func (s *Session) SetExitHandler(handler func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExit = handler
}

// Start launches the shell attached to a new PTY. Starting a running
// session is a no-op.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	shell := s.shell
	if shell == "" {
		shell = defaultShell()
	}

	cmd := exec.Command(shell)
	if s.workDir != "" {
		cmd.Dir = s.workDir
	}
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := s.startPTY(cmd)
	if err != nil {
		return fmt.Errorf("start terminal shell: %w", err)
	}
	_ = s.setSize(ptmx, s.cols, s.rows)

	s.cmd = cmd
	s.ptmx = ptmx
	s.input = ptmx
	s.running = true
	s.closing = false

	go s.readLoop(ptmx)
	go s.waitLoop(cmd)

	return nil
}

// Write forwards raw input bytes to the shell unmodified.
func (s *Session) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.input == nil {
		return ErrNotRunning
	}

	_, err := s.input.Write(data)
	return err
}

// Interrupt sends Ctrl+C to the foreground process group.
func (s *Session) Interrupt() error {
	return s.Write([]byte{0x03})
}

// Drain returns output accumulated since the previous call and clears the
// buffer. Empty output during idle periods is normal.
func (s *Session) Drain() domain.TerminalRead {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := string(s.pending)
	s.pending = s.pending[:0]
	return domain.TerminalRead{Output: out, Running: s.running}
}

// Resize applies a new PTY size. Sizes below the minimum are clamped and
// the syscall is skipped entirely when the size is unchanged.
func (s *Session) Resize(cols, rows int) error {
	if cols < minCols {
		cols = minCols
	}
	if rows < minRows {
		rows = minRows
	}

	s.mu.Lock()
	if cols == s.cols && rows == s.rows {
		s.mu.Unlock()
		return nil
	}
	s.cols = cols
	s.rows = rows
	ptmx := s.ptmx
	running := s.running
	setSize := s.setSize
	s.mu.Unlock()

	if !running {
		return nil
	}
	return setSize(ptmx, cols, rows)
}

// State reports the current session size and connection status.
func (s *Session) State() domain.TerminalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.TerminalState{
		SizeCols:  s.cols,
		SizeRows:  s.rows,
		Connected: s.running,
	}
}

// IsRunning reports whether the shell process is alive.
func (s *Session) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Close terminates the shell process and releases the PTY. A deliberate
// close suppresses the exit notice.
func (s *Session) Close() error {
	s.mu.Lock()
	ptmx := s.ptmx
	cmd := s.cmd
	s.ptmx = nil
	s.input = nil
	s.cmd = nil
	s.running = false
	s.closing = true
	s.mu.Unlock()

	if ptmx != nil {
		_ = ptmx.Close()
	}
	if cmd != nil && cmd.Process != nil {
		return cmd.Process.Kill()
	}
	return nil
}

// readLoop copies PTY output into the poll buffer and push handler.
func (s *Session) readLoop(ptmx *os.File) {
	buf := make([]byte, 4096)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			s.ingest(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// waitLoop marks the session stopped once the shell exits. The exit
// notice is skipped when the session was closed deliberately.
func (s *Session) waitLoop(cmd *exec.Cmd) {
	_ = cmd.Wait()

	s.mu.Lock()
	s.running = false
	handler := s.onExit
	if s.closing {
		handler = nil
	}
	s.mu.Unlock()

	if handler != nil {
		handler()
	}
}

// ingest appends output to the poll buffer and notifies the push handler.
func (s *Session) ingest(data []byte) {
	chunk := append([]byte(nil), data...)

	s.mu.Lock()
	s.pending = append(s.pending, chunk...)
	if len(s.pending) > maxPendingBytes {
		trim := len(s.pending) - maxPendingBytes
		s.pending = append([]byte(nil), s.pending[trim:]...)
	}
	handler := s.onOutput
	s.mu.Unlock()

	if handler != nil {
		handler(chunk)
	}
}

// defaultShell picks the shell binary for the host platform.
func defaultShell() string {
	if runtime.GOOS == "windows" {
		return "cmd.exe"
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/bash"
}

// NewSessionForTests constructs a running session with injected input and
// resize dependencies and no real PTY.
func NewSessionForTests(input io.Writer, setSize func(ptmx *os.File, cols, rows int) error) *Session {
	s := NewSession("")
	s.input = input
	s.setSize = setSize
	s.running = true
	return s
}
