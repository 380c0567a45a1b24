// Package manager adapts generic package operations (install, search, info,
// upgrade) onto concrete backends: apt, dnf, pacman, zypper and flatpak.
package manager

import (
	"context"

	"github.com/distroforge/distroforge/executor"
)

// ProgressFunc receives live output lines while a long operation runs.
type ProgressFunc func(line string)

// PackageInfo is the descriptive record for one package.
type PackageInfo struct {
	Name        string
	Version     string
	Description string
	Installed   bool
	Available   bool
}

// InstallResult is the outcome of installing a set of packages. A package
// name appears in at most one of the installed/failed lists.
type InstallResult struct {
	Success           bool
	PackagesInstalled []string
	PackagesFailed    []string
	Errors            map[string]string
	Output            string
}

// AllSuccessful reports whether every requested package ended up installed.
func (r *InstallResult) AllSuccessful() bool {
	return r.Success && len(r.PackagesFailed) == 0
}

// ProgressInfo is the stateless classification of a chunk of backend output.
// Progress is -1 when no percentage can be derived.
type ProgressInfo struct {
	Progress      int
	CurrentAction string
}

func neutralProgress() ProgressInfo {
	return ProgressInfo{Progress: -1}
}

// Runner is the narrow execution dependency of an adapter, satisfied by
// *executor.Executor and by test doubles.
type Runner interface {
	Execute(ctx context.Context, command string, opts executor.Options) (*executor.CommandResult, error)
}

// PackageManager is the common operation set every backend satisfies.
// Non-zero exits surface as unsuccessful results; the only errors returned
// are privilege elevation failures.
type PackageManager interface {
	// Name returns the backend identifier ("apt", "dnf", ...).
	Name() string

	// UpdateCache refreshes repository metadata under elevation. What
	// counts as success is backend-specific.
	UpdateCache(ctx context.Context) (bool, error)

	// InstallPackages installs all requested packages in one combined
	// command, updating the cache first if this instance has not done so
	// yet. On partial failure it re-verifies each package individually to
	// partition the set and derive per-package error reasons.
	InstallPackages(ctx context.Context, packages []string, onProgress ProgressFunc) (*InstallResult, error)

	// IsPackageInstalled is a fast, non-privileged query against the local
	// package database.
	IsPackageInstalled(ctx context.Context, name string) bool

	// SearchPackage queries the repositories and parses the backend's
	// line-oriented search output.
	SearchPackage(ctx context.Context, query string) ([]PackageInfo, error)

	// GetPackageInfo returns the backend's show/info record for a package,
	// or nil when the package is unknown.
	GetPackageInfo(ctx context.Context, name string) (*PackageInfo, error)

	// UpgradeSystem refreshes the cache and runs a full upgrade with live
	// progress.
	UpgradeSystem(ctx context.Context, onProgress ProgressFunc) (bool, error)

	// ParseOutput classifies raw backend output into progress information.
	// It never fails; unrecognized text yields a neutral result.
	ParseOutput(output string) ProgressInfo
}
