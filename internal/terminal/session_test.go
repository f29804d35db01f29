package terminal

import (
	"bytes"
	"os"
	"os/exec"
	"testing"
)

// TestSessionStateBeforeStart verifies defaults for a stopped session.
func TestSessionStateBeforeStart(t *testing.T) {
	s := NewSession("")
	state := s.State()
	if state.Connected {
		t.Fatal("new session should not be connected")
	}
	if state.SizeCols != 120 || state.SizeRows != 30 {
		t.Fatalf("size = %dx%d, want 120x30", state.SizeCols, state.SizeRows)
	}
}

// TestSessionWriteForwardsRawBytes verifies input passthrough without
// interpretation.
func TestSessionWriteForwardsRawBytes(t *testing.T) {
	var input bytes.Buffer
	s := NewSessionForTests(&input, nil)

	raw := []byte("ls -la\r\x1b[A")
	if err := s.Write(raw); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if input.String() != string(raw) {
		t.Fatalf("forwarded = %q, want %q", input.String(), raw)
	}
}

// TestSessionWriteWhenStopped verifies input to a stopped session fails.
func TestSessionWriteWhenStopped(t *testing.T) {
	s := NewSession("")
	if err := s.Write([]byte("x")); err != ErrNotRunning {
		t.Fatalf("error = %v, want %v", err, ErrNotRunning)
	}
}

// TestSessionDrainReturnsAndClears verifies poll semantics.
func TestSessionDrainReturnsAndClears(t *testing.T) {
	s := NewSessionForTests(&bytes.Buffer{}, nil)
	s.ingest([]byte("hello "))
	s.ingest([]byte("world"))

	read := s.Drain()
	if read.Output != "hello world" {
		t.Fatalf("output = %q, want %q", read.Output, "hello world")
	}
	if !read.Running {
		t.Fatal("expected running session")
	}

	again := s.Drain()
	if again.Output != "" {
		t.Fatalf("second drain output = %q, want empty", again.Output)
	}
	if !again.Running {
		t.Fatal("idle drain should still report running")
	}
}

// TestSessionOutputHandlerReceivesChunks verifies the push transport.
func TestSessionOutputHandlerReceivesChunks(t *testing.T) {
	s := NewSessionForTests(&bytes.Buffer{}, nil)

	var pushed []byte
	s.SetOutputHandler(func(data []byte) {
		pushed = append(pushed, data...)
	})

	s.ingest([]byte("chunk-1 "))
	s.ingest([]byte("chunk-2"))

	if string(pushed) != "chunk-1 chunk-2" {
		t.Fatalf("pushed = %q, want %q", pushed, "chunk-1 chunk-2")
	}

	// Push delivery must not consume the poll buffer.
	if read := s.Drain(); read.Output != "chunk-1 chunk-2" {
		t.Fatalf("poll output = %q, want both chunks", read.Output)
	}
}

// TestSessionResizeSkipsUnchangedSize verifies at most one syscall per
// settled size change.
func TestSessionResizeSkipsUnchangedSize(t *testing.T) {
	calls := 0
	s := NewSessionForTests(&bytes.Buffer{}, func(ptmx *os.File, cols, rows int) error {
		calls++
		return nil
	})

	if err := s.Resize(100, 40); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if err := s.Resize(100, 40); err != nil {
		t.Fatalf("repeat resize: %v", err)
	}
	if calls != 1 {
		t.Fatalf("setSize calls = %d, want 1", calls)
	}

	if err := s.Resize(80, 40); err != nil {
		t.Fatalf("changed resize: %v", err)
	}
	if calls != 2 {
		t.Fatalf("setSize calls = %d, want 2", calls)
	}

	state := s.State()
	if state.SizeCols != 80 || state.SizeRows != 40 {
		t.Fatalf("size = %dx%d, want 80x40", state.SizeCols, state.SizeRows)
	}
}

// TestSessionResizeClampsMinimums verifies tiny sizes are clamped.
func TestSessionResizeClampsMinimums(t *testing.T) {
	var gotCols, gotRows int
	s := NewSessionForTests(&bytes.Buffer{}, func(ptmx *os.File, cols, rows int) error {
		gotCols, gotRows = cols, rows
		return nil
	})

	if err := s.Resize(1, 1); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if gotCols != 10 || gotRows != 5 {
		t.Fatalf("clamped size = %dx%d, want 10x5", gotCols, gotRows)
	}
}

// TestSessionInterruptSendsCtrlC verifies the interrupt byte.
func TestSessionInterruptSendsCtrlC(t *testing.T) {
	var input bytes.Buffer
	s := NewSessionForTests(&input, nil)

	if err := s.Interrupt(); err != nil {
		t.Fatalf("interrupt: %v", err)
	}
	if input.Len() != 1 || input.Bytes()[0] != 0x03 {
		t.Fatalf("sent = %v, want [0x03]", input.Bytes())
	}
}

// TestSessionPendingBufferCap verifies oldest output is dropped first.
func TestSessionPendingBufferCap(t *testing.T) {
	s := NewSessionForTests(&bytes.Buffer{}, nil)

	filler := bytes.Repeat([]byte{'a'}, maxPendingBytes)
	s.ingest(filler)
	s.ingest([]byte("tail"))

	read := s.Drain()
	if len(read.Output) != maxPendingBytes {
		t.Fatalf("buffer length = %d, want %d", len(read.Output), maxPendingBytes)
	}
	if read.Output[len(read.Output)-4:] != "tail" {
		t.Fatalf("buffer should keep newest output, got tail %q", read.Output[len(read.Output)-4:])
	}
}

// TestIsLocalCommand verifies client-side command detection.
func TestIsLocalCommand(t *testing.T) {
	for _, input := range []string{"clear", "CLEAR", " cls ", "help"} {
		if !IsLocalCommand(input) {
			t.Fatalf("IsLocalCommand(%q) = false, want true", input)
		}
	}
	for _, input := range []string{"ls -la", "clearall", "", "python"} {
		if IsLocalCommand(input) {
			t.Fatalf("IsLocalCommand(%q) = true, want false", input)
		}
	}
}

// TestSessionExitNoticeFiresOnUnexpectedExit verifies the exit handler
// runs when the shell dies on its own.
func TestSessionExitNoticeFiresOnUnexpectedExit(t *testing.T) {
	exited := make(chan struct{}, 1)
	s := NewSessionForTests(&bytes.Buffer{}, nil)
	s.SetExitHandler(func() { exited <- struct{}{} })

	s.waitLoop(exec.Command("true"))

	select {
	case <-exited:
	default:
		t.Fatal("exit handler did not fire")
	}
	if s.IsRunning() {
		t.Fatal("session still running after exit")
	}
}

// TestSessionCloseSuppressesExitNotice verifies a deliberate close does
// not surface a shell exit to the UI.
func TestSessionCloseSuppressesExitNotice(t *testing.T) {
	exited := make(chan struct{}, 1)
	s := NewSessionForTests(&bytes.Buffer{}, nil)
	s.SetExitHandler(func() { exited <- struct{}{} })

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	s.waitLoop(exec.Command("true"))

	select {
	case <-exited:
		t.Fatal("exit handler fired after deliberate close")
	default:
	}
}
