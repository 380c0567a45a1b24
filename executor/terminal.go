package executor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

// sigintExitCode is what a shell reports when interrupted (128 + SIGINT).
const sigintExitCode = 130

// TerminalResult is the outcome of an interactive terminal session. Nothing
// is captured or parsed; only the exit code survives.
type TerminalResult struct {
	ExitCode int
	Success  bool
}

func terminalResult(code int) TerminalResult {
	return TerminalResult{ExitCode: code, Success: code == 0}
}

// TerminalRunner executes command sequences attached directly to the
// controlling terminal, for flows where the user must see output and answer
// prompts in real time (sudo passwords, package manager confirmations).
type TerminalRunner struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// runScript launches the assembled script; injectable for tests.
	runScript func(script string) error
}

func NewTerminalRunner() *TerminalRunner {
	t := &TerminalRunner{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	t.runScript = func(script string) error {
		cmd := exec.Command("bash", "-c", script)
		cmd.Stdin = t.stdin
		cmd.Stdout = t.stdout
		cmd.Stderr = t.stderr
		return cmd.Run()
	}
	return t
}

// RunInteractive assembles the commands into a fail-fast script and runs it
// attached to the terminal. A user interrupt is reported as exit code 130
// rather than propagating.
func (t *TerminalRunner) RunInteractive(commands []string, useSudo bool, description string) TerminalResult {
	script := buildScript(commands, useSudo, description)

	// The child shares the terminal; let it handle Ctrl-C and report the
	// interruption through its exit code instead of killing this process.
	signal.Ignore(os.Interrupt)
	defer signal.Reset(os.Interrupt)

	err := t.runScript(script)
	if err == nil {
		return terminalResult(0)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() && ws.Signal() == syscall.SIGINT {
				return terminalResult(sigintExitCode)
			}
			return terminalResult(1)
		}
		return terminalResult(code)
	}

	fmt.Fprintf(t.stderr, "\nError executing command: %v\n", err)
	return terminalResult(1)
}

// RunWithConfirmation shows the full command list and requires an
// affirmative answer before running. Declining is reported as a successful
// no-op: the operation was never attempted, which is different from it
// failing.
func (t *TerminalRunner) RunWithConfirmation(commands []string, useSudo bool, description, warning string) TerminalResult {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(t.stdout, "\n"+separator)
	if description != "" {
		fmt.Fprintln(t.stdout, description)
	}
	fmt.Fprintln(t.stdout, separator)

	fmt.Fprintln(t.stdout, "\nThe following commands will be executed:")
	fmt.Fprintln(t.stdout)
	for i, command := range commands {
		prefix := ""
		if useSudo && !strings.HasPrefix(strings.TrimSpace(command), "sudo") {
			prefix = "sudo "
		}
		fmt.Fprintf(t.stdout, "  %d. %s%s\n", i+1, prefix, command)
	}

	if warning != "" {
		fmt.Fprintf(t.stdout, "\nWARNING: %s\n", warning)
	}
	fmt.Fprintln(t.stdout, "\n"+separator)

	fmt.Fprint(t.stdout, "\nContinue? [y/N]: ")
	reader := bufio.NewReader(t.stdin)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		fmt.Fprintln(t.stdout, "\nOperation cancelled.")
		return terminalResult(sigintExitCode)
	}

	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return t.RunInteractive(commands, useSudo, description)
	default:
		fmt.Fprintln(t.stdout, "Operation cancelled.")
		return terminalResult(0)
	}
}

// buildScript renders the fail-fast script: banner, elevated commands,
// completion banner, and an explicit keypress before control returns.
func buildScript(commands []string, useSudo bool, description string) string {
	lines := []string{"#!/bin/bash", "set -e"}

	if description != "" {
		lines = append(lines,
			`echo "==================================="`,
			fmt.Sprintf("echo %q", description),
			`echo "==================================="`,
			`echo ""`,
		)
	}

	for _, command := range commands {
		if useSudo && !strings.HasPrefix(strings.TrimSpace(command), "sudo") {
			lines = append(lines, "sudo "+command)
		} else {
			lines = append(lines, command)
		}
	}

	lines = append(lines,
		`echo ""`,
		`echo "==================================="`,
		`echo "Operation completed!"`,
		`echo "==================================="`,
		`echo ""`,
		`read -p "Press Enter to continue..."`,
	)
	return strings.Join(lines, "\n")
}
