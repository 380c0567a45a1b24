package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/distroforge/distroforge/catalog"
	"github.com/distroforge/distroforge/common"
	"github.com/distroforge/distroforge/executor"
	"github.com/distroforge/distroforge/logger"
	"github.com/distroforge/distroforge/manager"
)

// TweakReport summarizes one tweak application session.
type TweakReport struct {
	Session         string
	Applied         int
	Skipped         int
	Failed          int
	States          map[string]common.OperationState // tweak id -> final state
	Failures        map[string]string                // tweak id -> reason
	RequiresRestart bool
}

// TweakService applies catalog tweaks: verification-gated skipping, ordered
// command execution under elevation, and partial-failure accounting.
type TweakService struct {
	runner manager.Runner
}

func NewTweakService(runner manager.Runner) *TweakService {
	return &TweakService{runner: runner}
}

// Apply runs each tweak in order. A failing command abandons the remaining
// commands of that tweak but later tweaks still run; only privilege
// elevation failures abort the session. onStatus, when set, receives
// human-readable progress lines.
func (s *TweakService) Apply(ctx context.Context, tweaks []catalog.Tweak, onStatus func(line string)) (*TweakReport, error) {
	report := &TweakReport{
		Session:  uuid.NewString(),
		States:   make(map[string]common.OperationState),
		Failures: make(map[string]string),
	}
	log := logger.Log.WithField(common.LogFieldSession, report.Session).
		WithField(common.LogFieldOperation, "tweak")

	status := func(format string, args ...interface{}) {
		if onStatus != nil {
			onStatus(fmt.Sprintf(format, args...))
		}
	}

	for i, tweak := range tweaks {
		status("[%d/%d] Applying: %s...", i+1, len(tweaks), tweak.Name)
		tweakLog := log.WithField(common.LogFieldTweak, tweak.ID)
		report.States[tweak.ID] = common.StateRunning

		applied, err := s.alreadyApplied(ctx, tweak)
		if err != nil {
			return report, err
		}
		if applied {
			status("Skipped: %s (already applied)", tweak.Name)
			tweakLog.Debug("verification matched, skipping")
			report.States[tweak.ID] = common.StateSkipped
			report.Skipped++
			continue
		}

		failure, err := s.runCommands(ctx, tweak, status)
		if err != nil {
			return report, err
		}
		if failure != "" {
			status("Failed: %s - %s", tweak.Name, failure)
			tweakLog.Warnf("tweak failed: %s", failure)
			report.States[tweak.ID] = common.StateFailed
			report.Failed++
			report.Failures[tweak.ID] = failure
			continue
		}

		status("Applied: %s", tweak.Name)
		report.States[tweak.ID] = common.StateApplied
		report.Applied++
		if tweak.RequiresRestart {
			report.RequiresRestart = true
		}
	}
	return report, nil
}

// alreadyApplied runs the tweak's verification check, when one exists, and
// matches its stdout against the success pattern. Verification runs
// unprivileged; a broken pattern counts as "not applied" rather than
// failing the run.
func (s *TweakService) alreadyApplied(ctx context.Context, tweak catalog.Tweak) (bool, error) {
	if tweak.Verification == nil || !tweak.Idempotent {
		return false, nil
	}
	checkCmd := tweak.Verification.CheckCommand
	pattern := tweak.Verification.SuccessPattern
	if checkCmd == "" || pattern == "" {
		return false, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		logger.Log.WithField(common.LogFieldTweak, tweak.ID).
			Warnf("invalid verification pattern %q: %v", pattern, err)
		return false, nil
	}

	result, err := s.runner.Execute(ctx, checkCmd, executor.Options{})
	if err != nil {
		return false, err
	}
	return re.MatchString(result.Stdout), nil
}

// runCommands executes the tweak's steps in order under elevation. It
// returns a failure reason for the first unsuccessful step, or empty when
// all steps succeeded.
func (s *TweakService) runCommands(ctx context.Context, tweak catalog.Tweak, status func(string, ...interface{})) (string, error) {
	for _, step := range tweak.Commands {
		if step.Description != "" {
			status("  %s...", step.Description)
		}

		result, err := s.runner.Execute(ctx, step.Command, executor.Options{
			UseSudo: true,
			Timeout: common.TweakStepTimeout,
		})
		if err != nil {
			return "", err
		}
		if !result.Success() {
			return failureReason(result), nil
		}
	}
	return "", nil
}

func failureReason(result *executor.CommandResult) string {
	switch result.Status {
	case executor.StatusTimeout:
		return "command timed out"
	case executor.StatusCancelled:
		return "command was cancelled"
	}
	reason := strings.TrimSpace(result.Stderr)
	if reason == "" {
		reason = fmt.Sprintf("command exited with code %d", result.ExitCode)
	}
	if idx := strings.IndexByte(reason, '\n'); idx >= 0 {
		reason = reason[:idx]
	}
	if len(reason) > 100 {
		reason = reason[:100]
	}
	return reason
}
