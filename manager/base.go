package manager

import (
	"context"
	"strings"
	"time"

	"github.com/distroforge/distroforge/cache"
	"github.com/distroforge/distroforge/common"
	"github.com/distroforge/distroforge/executor"
	"github.com/distroforge/distroforge/logger"
)

// searchTTL bounds how long repository search results are memoized. Install
// state is never cached; it is re-queried for every verification.
const searchTTL = 5 * time.Minute

// base carries the state and flows shared by all adapters: the runner, the
// once-per-instance cache update gate, and the search result memo.
type base struct {
	name         string
	runner       Runner
	cacheUpdated bool
	searchCache  *cache.Cache[string, []PackageInfo]
}

func newBase(name string, runner Runner) base {
	return base{
		name:   name,
		runner: runner,
		searchCache: cache.New(
			cache.WithDefaultTTL[string, []PackageInfo](searchTTL),
		),
	}
}

func (b *base) Name() string {
	return b.name
}

// updateCacheWith runs the backend's refresh command under elevation and
// marks the instance's cache gate when the exit code is accepted. okCodes
// defaults to {0}; dnf passes {0, 100} since check-update uses 100 for
// "updates available".
func (b *base) updateCacheWith(ctx context.Context, command string, okCodes ...int) (bool, error) {
	if len(okCodes) == 0 {
		okCodes = []int{0}
	}
	result, err := b.runner.Execute(ctx, command, executor.Options{
		UseSudo: true,
		Timeout: common.CacheUpdateTimeout,
	})
	if err != nil {
		return false, err
	}
	if result.Status == executor.StatusTimeout || result.Status == executor.StatusCancelled {
		return false, nil
	}

	for _, code := range okCodes {
		if result.ExitCode == code {
			b.cacheUpdated = true
			return true, nil
		}
	}
	return false, nil
}

// installWith is the shared install flow: ensure the cache was refreshed at
// most once per adapter instance, run the combined install command with live
// progress, and on partial failure re-verify each package individually to
// partition installed from failed and derive per-package error reasons.
func (b *base) installWith(
	ctx context.Context,
	command string,
	packages []string,
	useSudo bool,
	onProgress ProgressFunc,
	updateCache func(context.Context) (bool, error),
	isInstalled func(context.Context, string) bool,
	extractError func(stderr, pkg string) string,
) (*InstallResult, error) {
	if !b.cacheUpdated {
		if onProgress != nil {
			onProgress("Updating package cache...")
		}
		if _, err := updateCache(ctx); err != nil {
			return nil, err
		}
	}

	result, err := b.runner.Execute(ctx, command, executor.Options{
		UseSudo: useSudo,
		Timeout: common.InstallTimeout,
		OnOutput: func(line string) {
			if onProgress != nil {
				onProgress(line)
			}
		},
	})
	if err != nil {
		return nil, err
	}

	install := &InstallResult{
		Success: result.Success(),
		Errors:  make(map[string]string),
		Output:  result.Output(),
	}

	if result.Success() {
		install.PackagesInstalled = append(install.PackagesInstalled, packages...)
		return install, nil
	}

	for _, pkg := range packages {
		if isInstalled(ctx, pkg) {
			install.PackagesInstalled = append(install.PackagesInstalled, pkg)
			continue
		}
		install.PackagesFailed = append(install.PackagesFailed, pkg)
		install.Errors[pkg] = extractError(result.Stderr, pkg)
		logger.Log.WithField(common.LogFieldManager, b.name).
			WithField(common.LogFieldPackage, pkg).
			Warnf("install failed: %s", install.Errors[pkg])
	}
	return install, nil
}

// query runs a non-privileged command and returns its result. With UseSudo
// unset the executor cannot produce a privilege error.
func (b *base) query(ctx context.Context, command string) *executor.CommandResult {
	result, _ := b.runner.Execute(ctx, command, executor.Options{})
	return result
}

// searchWith memoizes repository searches per query for a short TTL.
func (b *base) searchWith(ctx context.Context, command, query string, parse func(stdout string) []PackageInfo) ([]PackageInfo, error) {
	if hit, ok := b.searchCache.Get(query); ok {
		return hit, nil
	}

	result := b.query(ctx, command)
	if result == nil {
		return nil, nil
	}
	packages := parse(result.Stdout)
	b.searchCache.Set(query, packages)
	return packages, nil
}

// upgradeWith refreshes the cache then runs the backend's full upgrade.
func (b *base) upgradeWith(
	ctx context.Context,
	command string,
	useSudo bool,
	onProgress ProgressFunc,
	updateCache func(context.Context) (bool, error),
) (bool, error) {
	ok, err := updateCache(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if onProgress != nil {
		onProgress("Upgrading packages...")
	}
	result, err := b.runner.Execute(ctx, command, executor.Options{
		UseSudo: useSudo,
		Timeout: common.UpgradeTimeout,
		OnOutput: func(line string) {
			if onProgress != nil {
				onProgress(line)
			}
		},
	})
	if err != nil {
		return false, err
	}
	return result.Success(), nil
}

// queryOptionsWithTimeout bounds unprivileged metadata refreshes the same
// way privileged ones are bounded.
func queryOptionsWithTimeout() executor.Options {
	return executor.Options{Timeout: common.CacheUpdateTimeout}
}

// executorUpgradeOptions are the options shared by full-upgrade commands.
func executorUpgradeOptions(onProgress ProgressFunc) executor.Options {
	return executor.Options{
		UseSudo: true,
		Timeout: common.UpgradeTimeout,
		OnOutput: func(line string) {
			if onProgress != nil {
				onProgress(line)
			}
		},
	}
}

// parseKeyValues splits colon-delimited "Key: Value" lines into a map,
// which is how every backend's show/info subcommand formats its output.
func parseKeyValues(text string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if _, seen := fields[key]; !seen {
			fields[key] = strings.TrimSpace(value)
		}
	}
	return fields
}

func firstLineWithPrefix(text, prefix string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	return "", false
}
