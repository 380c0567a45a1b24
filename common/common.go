package common

import (
	"path/filepath"
	"time"
)

const (
	AppName = "distroforge"
)

// Default locations searched for the YAML catalogs. The first existing
// directory wins; the CLI flag overrides both.
var DefaultConfigDirs = []string{
	"/usr/share/" + AppName,
	"/etc/" + AppName,
}

func DefaultLogDir() string {
	return filepath.Join("/var/log", AppName)
}

// Logger field keys shared across packages so the formatter can order them.
const (
	LogFieldApp       = "app"
	LogFieldDistro    = "distro"
	LogFieldManager   = "manager"
	LogFieldOperation = "operation"
	LogFieldSession   = "session"
	LogFieldPackage   = "package"
	LogFieldTweak     = "tweak"
)

// Package manager identifiers as they appear in os-release mappings and in
// the install sections of app catalog entries.
const (
	ManagerApt     = "apt"
	ManagerDnf     = "dnf"
	ManagerPacman  = "pacman"
	ManagerZypper  = "zypper"
	ManagerFlatpak = "flatpak"
)

// Time bounds for package manager invocations. Cache refreshes are quick,
// installs can pull hundreds of megabytes, and a full system upgrade on a
// stale install can take the better part of an hour.
const (
	CacheUpdateTimeout = 5 * time.Minute
	InstallTimeout     = 30 * time.Minute
	UpgradeTimeout     = 60 * time.Minute
	TweakStepTimeout   = 5 * time.Minute
)

// OperationState tracks where a batch item is in its lifecycle.
type OperationState int

const (
	StatePending OperationState = iota
	StateRunning
	StateApplied
	StateSkipped
	StateFailed
)

func (s OperationState) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateRunning:
		return "Running"
	case StateApplied:
		return "Applied"
	case StateSkipped:
		return "Skipped"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
