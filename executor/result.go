// Package executor runs external commands to completion or timeout,
// optionally under privilege elevation, and reports structured results.
package executor

import "time"

// Status classifies the outcome of one command execution.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailed
	StatusTimeout
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusTimeout:
		return "timeout"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// killedExitCode is the sentinel exit code reported when a process was
// forcibly terminated or never ran.
const killedExitCode = -1

// CommandResult is the immutable outcome of one non-interactive command.
// Timeout and Cancelled imply the process was killed and ExitCode is -1.
type CommandResult struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Status   Status
	Duration time.Duration
}

// Success reports whether the command completed normally with exit code 0.
func (r *CommandResult) Success() bool {
	return r.ExitCode == 0 && r.Status == StatusSuccess
}

// Output returns stdout and stderr concatenated.
func (r *CommandResult) Output() string {
	return r.Stdout + r.Stderr
}
