package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distroforge/distroforge/catalog"
	"github.com/distroforge/distroforge/common"
	"github.com/distroforge/distroforge/executor"
)

// fakeRunner answers commands through the respond hook; without one every
// command succeeds with empty output.
type fakeRunner struct {
	commands []string
	respond  func(command string, opts executor.Options) *executor.CommandResult
	err      error
}

func (f *fakeRunner) Execute(ctx context.Context, command string, opts executor.Options) (*executor.CommandResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.commands = append(f.commands, command)
	if f.respond != nil {
		return f.respond(command, opts), nil
	}
	return &executor.CommandResult{Command: command, Status: executor.StatusSuccess}, nil
}

func success(command, stdout string) *executor.CommandResult {
	return &executor.CommandResult{Command: command, Stdout: stdout, Status: executor.StatusSuccess}
}

func failed(command string, code int, stderr string) *executor.CommandResult {
	return &executor.CommandResult{Command: command, ExitCode: code, Stderr: stderr, Status: executor.StatusFailed}
}

func simpleTweak(id string, commands ...string) catalog.Tweak {
	tweak := catalog.Tweak{ID: id, Name: id, Idempotent: true}
	for _, command := range commands {
		tweak.Commands = append(tweak.Commands, catalog.TweakCommand{Command: command})
	}
	return tweak
}

func TestApply_AllSucceed(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewTweakService(runner)

	report, err := svc.Apply(context.Background(), []catalog.Tweak{
		simpleTweak("one", "echo one"),
		simpleTweak("two", "echo two-a", "echo two-b"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Applied)
	assert.Zero(t, report.Skipped)
	assert.Zero(t, report.Failed)
	assert.NotEmpty(t, report.Session)
	assert.Equal(t, []string{"echo one", "echo two-a", "echo two-b"}, runner.commands)
}

func TestApply_VerificationSkipsAppliedTweak(t *testing.T) {
	runner := &fakeRunner{
		respond: func(command string, opts executor.Options) *executor.CommandResult {
			if command == "sysctl -n vm.swappiness" {
				assert.False(t, opts.UseSudo, "verification checks run unprivileged")
				return success(command, "10\n")
			}
			return success(command, "")
		},
	}
	svc := NewTweakService(runner)

	tweak := simpleTweak("swappiness", "sysctl -w vm.swappiness=10")
	tweak.Verification = &catalog.Verification{
		CheckCommand:   "sysctl -n vm.swappiness",
		SuccessPattern: `^10$`,
	}

	report, err := svc.Apply(context.Background(), []catalog.Tweak{tweak}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Applied)
	assert.Equal(t, []string{"sysctl -n vm.swappiness"}, runner.commands,
		"the tweak commands must not run")
}

func TestApply_NonIdempotentTweakSkipsVerification(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewTweakService(runner)

	tweak := simpleTweak("once", "do-the-thing")
	tweak.Idempotent = false
	tweak.Verification = &catalog.Verification{CheckCommand: "check", SuccessPattern: ".*"}

	report, err := svc.Apply(context.Background(), []catalog.Tweak{tweak}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, []string{"do-the-thing"}, runner.commands)
}

func TestApply_InvalidPatternCountsAsNotApplied(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewTweakService(runner)

	tweak := simpleTweak("bad-pattern", "echo run")
	tweak.Verification = &catalog.Verification{CheckCommand: "check", SuccessPattern: "([unclosed"}

	report, err := svc.Apply(context.Background(), []catalog.Tweak{tweak}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Applied)
	assert.Contains(t, runner.commands, "echo run")
	assert.NotContains(t, runner.commands, "check")
}

func TestApply_FailureAbandonsRemainingStepsButNotLaterTweaks(t *testing.T) {
	runner := &fakeRunner{
		respond: func(command string, opts executor.Options) *executor.CommandResult {
			if command == "step-2-fails" {
				return failed(command, 1, "Permission denied\nmore detail")
			}
			return success(command, "")
		},
	}
	svc := NewTweakService(runner)

	report, err := svc.Apply(context.Background(), []catalog.Tweak{
		simpleTweak("broken", "step-1", "step-2-fails", "step-3-never-runs"),
		simpleTweak("fine", "later-step"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, common.StateFailed, report.States["broken"])
	assert.Equal(t, common.StateApplied, report.States["fine"])
	assert.Equal(t, "Permission denied", report.Failures["broken"])
	assert.NotContains(t, runner.commands, "step-3-never-runs")
	assert.Contains(t, runner.commands, "later-step")
}

func TestApply_RequiresRestartAggregates(t *testing.T) {
	svc := NewTweakService(&fakeRunner{})

	restart := simpleTweak("needs-restart", "echo x")
	restart.RequiresRestart = true

	report, err := svc.Apply(context.Background(), []catalog.Tweak{
		simpleTweak("plain", "echo y"),
		restart,
	}, nil)
	require.NoError(t, err)

	assert.True(t, report.RequiresRestart)
}

func TestApply_PrivilegeErrorAbortsSession(t *testing.T) {
	runner := &fakeRunner{err: &executor.PrivilegeError{Reason: "elevation request was denied"}}
	svc := NewTweakService(runner)

	_, err := svc.Apply(context.Background(), []catalog.Tweak{simpleTweak("t", "echo x")}, nil)
	require.Error(t, err)
	assert.True(t, executor.IsPrivilegeError(err))
}

func TestApply_StatusLines(t *testing.T) {
	svc := NewTweakService(&fakeRunner{})

	var lines []string
	tweak := simpleTweak("one", "echo x")
	tweak.Name = "Reduce swappiness"
	tweak.Commands[0].Description = "Set swappiness now"

	_, err := svc.Apply(context.Background(), []catalog.Tweak{tweak}, func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "[1/1] Applying: Reduce swappiness...")
	assert.Contains(t, joined, "Set swappiness now...")
	assert.Contains(t, joined, "Applied: Reduce swappiness")
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "command timed out",
		failureReason(&executor.CommandResult{Status: executor.StatusTimeout}))
	assert.Equal(t, "command was cancelled",
		failureReason(&executor.CommandResult{Status: executor.StatusCancelled}))
	assert.Equal(t, "command exited with code 2",
		failureReason(&executor.CommandResult{Status: executor.StatusFailed, ExitCode: 2}))

	long := strings.Repeat("x", 150)
	assert.Len(t, failureReason(&executor.CommandResult{Status: executor.StatusFailed, Stderr: long}), 100)
}
