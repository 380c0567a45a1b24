package executor

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/distroforge/distroforge/logger"
)

// Environment overrides forced onto every spawned process, applied after any
// caller-supplied overrides so they always win. They keep package manager
// output non-interactive, deterministic and English, which the output
// parsers in the manager package depend on.
var forcedEnv = map[string]string{
	"DEBIAN_FRONTEND":  "noninteractive",
	"NEEDRESTART_MODE": "a",
	"LANG":             "C",
	"LC_ALL":           "C",
}

// teardownWait bounds how long Execute waits for process teardown after a
// kill before giving up on the wait.
const teardownWait = 5 * time.Second

// Options controls a single Execute call.
type Options struct {
	// UseSudo wraps the command with non-interactive elevation after
	// confirming or requesting privileges.
	UseSudo bool
	// Timeout forcibly kills the process when exceeded. Zero means no limit.
	Timeout time.Duration
	// OnOutput receives each output line (newline stripped) as it is
	// produced, interleaved across stdout and stderr.
	OnOutput func(line string)
	// Env overrides inherited environment variables. The forced overrides
	// above are applied last and always win.
	Env map[string]string
}

// MultiOptions controls an ExecuteMultiple call.
type MultiOptions struct {
	UseSudo     bool
	StopOnError bool
	OnStart     func(command string)
	OnComplete  func(result *CommandResult)
}

// Executor runs shell commands and normalizes their outcomes into
// CommandResults. Execution failures are data; only privilege preconditions
// surface as errors.
type Executor struct {
	Privileges *PrivilegeHandler
}

func NewExecutor(privileges *PrivilegeHandler) *Executor {
	if privileges == nil {
		privileges = NewPrivilegeHandler()
	}
	return &Executor{Privileges: privileges}
}

// Execute runs one shell command to completion, timeout, or cancellation.
// The returned error is non-nil only for privilege elevation failures; every
// execution-time problem, including launch errors, is folded into the
// CommandResult.
func (e *Executor) Execute(ctx context.Context, command string, opts Options) (*CommandResult, error) {
	start := time.Now()

	if opts.UseSudo {
		if !e.Privileges.CanElevate() {
			return nil, &PrivilegeError{Reason: "sudo required but not available"}
		}
		if !e.Privileges.CheckPrivileges(ctx) {
			if err := e.Privileges.RequestElevation(ctx); err != nil {
				return nil, err
			}
		}
		command = e.Privileges.WrapCommand(command, true)
	}

	logger.Log.Debugf("executing: %s", command)

	cmd := exec.Command("/bin/bash", "-c", command)
	cmd.Env = buildEnv(opts.Env)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return launchFailure(command, err, start), nil
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return launchFailure(command, err, start), nil
	}

	if err := cmd.Start(); err != nil {
		return launchFailure(command, err, start), nil
	}

	// Both pipes are drained concurrently so neither can fill up and block
	// the child. Lines on one stream arrive at the callback in order; no
	// ordering holds between the two streams.
	var stdout, stderr strings.Builder
	var callbackMu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(2)
	go drainLines(stdoutPipe, &stdout, opts.OnOutput, &callbackMu, &wg)
	go drainLines(stderrPipe, &stderr, opts.OnOutput, &callbackMu, &wg)

	done := make(chan struct{})
	var waitErr error
	go func() {
		wg.Wait()
		waitErr = cmd.Wait()
		close(done)
	}()

	var timeoutCh <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case <-done:
		exitCode := 0
		if waitErr != nil {
			exitCode = killedExitCode
			if cmd.ProcessState != nil {
				exitCode = cmd.ProcessState.ExitCode()
			}
		}
		status := StatusSuccess
		if exitCode != 0 {
			status = StatusFailed
		}
		return &CommandResult{
			Command:  command,
			ExitCode: exitCode,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Status:   status,
			Duration: time.Since(start),
		}, nil

	case <-timeoutCh:
		killAndReap(cmd, done)
		logger.Log.Warnf("command timed out after %s: %s", opts.Timeout, command)
		return &CommandResult{
			Command:  command,
			ExitCode: killedExitCode,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Status:   StatusTimeout,
			Duration: time.Since(start),
		}, nil

	case <-ctx.Done():
		killAndReap(cmd, done)
		return &CommandResult{
			Command:  command,
			ExitCode: killedExitCode,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Status:   StatusCancelled,
			Duration: time.Since(start),
		}, nil
	}
}

// ExecuteMultiple runs commands strictly in order; later commands may depend
// on earlier ones, so nothing runs concurrently. With StopOnError set,
// execution halts at the first unsuccessful result. Results produced so far
// are always returned, alongside any privilege error that interrupted the
// sequence.
func (e *Executor) ExecuteMultiple(ctx context.Context, commands []string, opts MultiOptions) ([]*CommandResult, error) {
	results := make([]*CommandResult, 0, len(commands))

	for _, command := range commands {
		if opts.OnStart != nil {
			opts.OnStart(command)
		}

		result, err := e.Execute(ctx, command, Options{UseSudo: opts.UseSudo})
		if err != nil {
			return results, err
		}
		results = append(results, result)

		if opts.OnComplete != nil {
			opts.OnComplete(result)
		}
		if opts.StopOnError && !result.Success() {
			break
		}
	}
	return results, nil
}

func buildEnv(overrides map[string]string) []string {
	env := os.Environ()
	for key, value := range overrides {
		env = append(env, key+"="+value)
	}
	// Appended last: os/exec gives the final occurrence of a duplicated key
	// precedence, so these always win.
	for key, value := range forcedEnv {
		env = append(env, key+"="+value)
	}
	return env
}

// drainLines reads a stream line by line, buffering everything and feeding
// each line (newline stripped) to the callback. The callback mutex keeps
// invocations from the two stream goroutines from interleaving.
func drainLines(r io.Reader, buf *strings.Builder, onOutput func(string), mu *sync.Mutex, wg *sync.WaitGroup) {
	defer wg.Done()

	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			buf.WriteString(line)
			if onOutput != nil {
				mu.Lock()
				onOutput(strings.TrimRight(line, "\r\n"))
				mu.Unlock()
			}
		}
		if err != nil {
			return
		}
	}
}

// killAndReap forcibly terminates the process and waits a bounded time for
// teardown so a wedged child cannot hang the caller.
func killAndReap(cmd *exec.Cmd, done <-chan struct{}) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	select {
	case <-done:
	case <-time.After(teardownWait):
		logger.Log.Warnf("process did not exit within %s of being killed", teardownWait)
	}
}

func launchFailure(command string, err error, start time.Time) *CommandResult {
	return &CommandResult{
		Command:  command,
		ExitCode: killedExitCode,
		Stderr:   err.Error(),
		Status:   StatusFailed,
		Duration: time.Since(start),
	}
}
