package cmd

import (
	"os/exec"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/distroforge/distroforge/catalog"
	"github.com/distroforge/distroforge/common"
	"github.com/distroforge/distroforge/distro"
	"github.com/distroforge/distroforge/executor"
	"github.com/distroforge/distroforge/logger"
	"github.com/distroforge/distroforge/manager"
)

// appContext bundles the collaborators every subcommand needs: the detected
// distribution, the catalog loader, and the execution core.
type appContext struct {
	distro   *distro.Info
	loader   *catalog.Loader
	exec     *executor.Executor
	terminal *executor.TerminalRunner
}

func newAppContext() (*appContext, error) {
	fs := afero.NewOsFs()

	info, err := distro.NewDetector(fs).Detect()
	if err != nil {
		return nil, errors.Wrap(err, "failed to detect distribution")
	}
	if flagManager != "" {
		info.PackageManager = flagManager
	}
	logger.Log.WithField(common.LogFieldDistro, info.Name).
		Debugf("detected %s", info)

	configDir := flagConfigDir
	if configDir == "" {
		for _, dir := range common.DefaultConfigDirs {
			if ok, _ := afero.DirExists(fs, dir); ok {
				configDir = dir
				break
			}
		}
	}
	if configDir == "" {
		configDir = common.DefaultConfigDirs[0]
	}

	return &appContext{
		distro:   info,
		loader:   catalog.NewLoader(fs, configDir),
		exec:     executor.NewExecutor(nil),
		terminal: executor.NewTerminalRunner(),
	}, nil
}

// packageManager returns the adapter for the detected (or overridden)
// package manager.
func (a *appContext) packageManager() (manager.PackageManager, error) {
	mgr, err := manager.Create(a.distro.PackageManager, a.exec)
	if err != nil {
		return nil, errors.Wrapf(err, "unsupported package manager %q", a.distro.PackageManager)
	}
	return mgr, nil
}

// flatpakManager returns the flatpak adapter when the flatpak binary is
// present, nil otherwise.
func (a *appContext) flatpakManager() manager.PackageManager {
	if _, err := exec.LookPath("flatpak"); err != nil {
		return nil
	}
	mgr, err := manager.Create(common.ManagerFlatpak, a.exec)
	if err != nil {
		return nil
	}
	return mgr
}
