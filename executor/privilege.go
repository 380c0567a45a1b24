package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/pkg/errors"
)

// PrivilegeError reports that privilege elevation cannot even be attempted:
// no elevation tool is installed, or the request was denied. It is the only
// error the execution layer raises; command failures are CommandResults.
type PrivilegeError struct {
	Reason string
	Err    error
}

func (e *PrivilegeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("privilege elevation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("privilege elevation failed: %s", e.Reason)
}

func (e *PrivilegeError) Unwrap() error {
	return e.Err
}

// IsPrivilegeError reports whether err is (or wraps) a PrivilegeError.
func IsPrivilegeError(err error) bool {
	var privErr *PrivilegeError
	return errors.As(err, &privErr)
}

// PrivilegeHandler decides whether and how commands are elevated. The cached
// flag is an advisory optimization to avoid redundant password prompts, not
// a security boundary: every wrapped command still goes through sudo's own
// non-interactive re-verification.
type PrivilegeHandler struct {
	hasSudo   bool
	hasPkexec bool

	mu     sync.Mutex
	cached bool

	// probe runs the non-interactive elevation check (sudo -n true).
	probe func(ctx context.Context) error
	// prompt runs the interactive elevation request (sudo -v) attached to
	// the controlling terminal.
	prompt func(ctx context.Context) error
}

func NewPrivilegeHandler() *PrivilegeHandler {
	h := &PrivilegeHandler{}
	if _, err := exec.LookPath("sudo"); err == nil {
		h.hasSudo = true
	}
	if _, err := exec.LookPath("pkexec"); err == nil {
		h.hasPkexec = true
	}
	h.probe = func(ctx context.Context) error {
		cmd := exec.CommandContext(ctx, "sudo", "-n", "true")
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
		return cmd.Run()
	}
	h.prompt = func(ctx context.Context) error {
		cmd := exec.CommandContext(ctx, "sudo", "-v")
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}
	return h
}

// CanElevate reports whether an elevation tool is present on PATH. Pure
// probe, no side effect.
func (h *PrivilegeHandler) CanElevate() bool {
	return h.hasSudo || h.hasPkexec
}

// CheckPrivileges probes whether elevation is already cached by sudo without
// prompting. It never returns an error; any failure means "not elevated".
func (h *PrivilegeHandler) CheckPrivileges(ctx context.Context) bool {
	if !h.hasSudo {
		return false
	}
	ok := h.probe(ctx) == nil

	h.mu.Lock()
	h.cached = ok
	h.mu.Unlock()
	return ok
}

// RequestElevation performs an elevation request that is allowed to prompt
// the user. On success the cached flag is set.
func (h *PrivilegeHandler) RequestElevation(ctx context.Context) error {
	if !h.CanElevate() {
		return &PrivilegeError{Reason: "no privilege elevation tool found (sudo/pkexec)"}
	}
	if err := h.prompt(ctx); err != nil {
		return &PrivilegeError{Reason: "elevation request was denied", Err: err}
	}

	h.mu.Lock()
	h.cached = true
	h.mu.Unlock()
	return nil
}

// HasCachedPrivileges reports the advisory cached flag.
func (h *PrivilegeHandler) HasCachedPrivileges() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cached
}

// WrapCommand prefixes command with the non-interactive elevation invocation
// when useSudo is set and sudo is available. Callers must have confirmed or
// requested privileges beforehand; the wrapper itself never prompts.
func (h *PrivilegeHandler) WrapCommand(command string, useSudo bool) string {
	if useSudo && h.hasSudo {
		return "sudo -n " + command
	}
	return command
}
