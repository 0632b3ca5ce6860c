package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// PIDFile enforces a single running server instance per pid file path.
// The serve command acquires it before starting the game loop so two
// processes never tick the same database.
type PIDFile struct {
	path string
}

func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Acquire writes the current pid to the file. It fails if the file names a
// live process; a stale file left by a crashed server is replaced.
func (p *PIDFile) Acquire() error {
	if pid, ok := p.readPID(); ok {
		if processAlive(pid) {
			return fmt.Errorf("another instance is running (PID %d)", pid)
		}
		_ = os.Remove(p.path)
	}

	body := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(p.path, []byte(body), 0644); err != nil {
		return fmt.Errorf("failed to write PID file %s: %w", p.path, err)
	}
	return nil
}

// Release removes the pid file. Missing files are not an error so Release
// is safe to defer unconditionally.
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file %s: %w", p.path, err)
	}
	return nil
}

// readPID returns the pid recorded in the file, if the file exists and
// parses. An unparseable file is treated as absent and cleaned up.
func (p *PIDFile) readPID() (int, bool) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		_ = os.Remove(p.path)
		return 0, false
	}
	return pid, true
}

// processAlive probes the pid with signal 0. EPERM means the process exists
// under another user, which still counts as running.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return true
	case errors.Is(err, syscall.EPERM):
		return true
	default:
		return false
	}
}
