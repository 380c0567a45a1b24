// Package service orchestrates catalog entries over the execution core:
// installing applications through the package manager adapters and applying
// system tweaks.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/distroforge/distroforge/catalog"
	"github.com/distroforge/distroforge/common"
	"github.com/distroforge/distroforge/executor"
	"github.com/distroforge/distroforge/logger"
	"github.com/distroforge/distroforge/manager"
)

// InstallReport aggregates one install session across the three install
// paths an app can take: native packages, flatpak refs, and custom command
// sequences run interactively.
type InstallReport struct {
	Session string
	Native  *manager.InstallResult
	Flatpak *manager.InstallResult
	// Custom maps app ids to the terminal outcome of their command list.
	Custom map[string]executor.TerminalResult
}

// Success reports whether every attempted path fully succeeded.
func (r *InstallReport) Success() bool {
	if r.Native != nil && !r.Native.AllSuccessful() {
		return false
	}
	if r.Flatpak != nil && !r.Flatpak.AllSuccessful() {
		return false
	}
	for _, result := range r.Custom {
		if !result.Success {
			return false
		}
	}
	return true
}

// InteractiveRunner is the terminal dependency of the install service,
// satisfied by *executor.TerminalRunner.
type InteractiveRunner interface {
	RunInteractive(commands []string, useSudo bool, description string) executor.TerminalResult
}

// InstallService installs catalog apps with the detected package manager,
// falling back to flatpak for apps that only ship there, and handing custom
// install sequences to an interactive terminal session.
type InstallService struct {
	native   manager.PackageManager
	flatpak  manager.PackageManager
	terminal InteractiveRunner
}

// NewInstallService builds a service around the detected backend. flatpak
// may be nil when the flatpak adapter is unavailable; apps that need it are
// then reported as failed.
func NewInstallService(native, flatpak manager.PackageManager, terminal InteractiveRunner) *InstallService {
	return &InstallService{native: native, flatpak: flatpak, terminal: terminal}
}

// InstallApps partitions apps by install method and runs each path. Native
// packages are combined into one backend transaction; custom apps each get
// an interactive terminal run under elevation. The returned error is non-nil
// only for privilege failures.
func (s *InstallService) InstallApps(ctx context.Context, apps []catalog.App, onProgress manager.ProgressFunc) (*InstallReport, error) {
	report := &InstallReport{
		Session: uuid.NewString(),
		Custom:  make(map[string]executor.TerminalResult),
	}
	log := logger.Log.WithField(common.LogFieldSession, report.Session).
		WithField(common.LogFieldOperation, "install")

	var nativePackages []string
	var flatpakRefs []string
	var customApps []catalog.App

	for _, app := range apps {
		if method, ok := app.Install[s.native.Name()]; ok {
			if method.IsNative() {
				nativePackages = append(nativePackages, method.Packages...)
			} else {
				customApps = append(customApps, app)
			}
			continue
		}
		if method, ok := app.Install[common.ManagerFlatpak]; ok {
			flatpakRefs = append(flatpakRefs, method.Packages...)
		}
	}

	if len(nativePackages) > 0 {
		log.WithField(common.LogFieldManager, s.native.Name()).
			Infof("installing %d native package(s)", len(nativePackages))
		result, err := s.native.InstallPackages(ctx, nativePackages, onProgress)
		if err != nil {
			return report, err
		}
		report.Native = result
	}

	if len(flatpakRefs) > 0 {
		if s.flatpak == nil {
			report.Flatpak = &manager.InstallResult{
				PackagesFailed: flatpakRefs,
				Errors:         failAll(flatpakRefs, "flatpak is not available on this system"),
			}
		} else {
			log.WithField(common.LogFieldManager, common.ManagerFlatpak).
				Infof("installing %d flatpak ref(s)", len(flatpakRefs))
			result, err := s.flatpak.InstallPackages(ctx, flatpakRefs, onProgress)
			if err != nil {
				return report, err
			}
			report.Flatpak = result
		}
	}

	for _, app := range customApps {
		method := app.Install[s.native.Name()]
		log.Infof("running custom install for %s (%d command(s))", app.ID, len(method.Commands))
		description := fmt.Sprintf("Installing %s", app.Name)
		report.Custom[app.ID] = s.terminal.RunInteractive(method.Commands, true, description)
	}

	return report, nil
}

func failAll(names []string, reason string) map[string]string {
	errs := make(map[string]string, len(names))
	for _, name := range names {
		errs[name] = reason
	}
	return errs
}
