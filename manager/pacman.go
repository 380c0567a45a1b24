package manager

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/distroforge/distroforge/common"
)

// pacmanManager drives pacman on Arch-family distributions.
type pacmanManager struct {
	base
}

func NewPacmanManager(runner Runner) PackageManager {
	return &pacmanManager{base: newBase(common.ManagerPacman, runner)}
}

func (m *pacmanManager) UpdateCache(ctx context.Context) (bool, error) {
	return m.updateCacheWith(ctx, "pacman -Sy")
}

func (m *pacmanManager) InstallPackages(ctx context.Context, packages []string, onProgress ProgressFunc) (*InstallResult, error) {
	command := "pacman -S --noconfirm --needed " + strings.Join(packages, " ")
	return m.installWith(ctx, command, packages, true, onProgress,
		m.UpdateCache, m.IsPackageInstalled, extractPacmanError)
}

func (m *pacmanManager) IsPackageInstalled(ctx context.Context, name string) bool {
	result := m.query(ctx, "pacman -Qi "+name)
	return result != nil && result.Success()
}

var pacmanSearchHeader = regexp.MustCompile(`^\S+/(\S+)\s+(\S+)`)

func (m *pacmanManager) SearchPackage(ctx context.Context, query string) ([]PackageInfo, error) {
	return m.searchWith(ctx, "pacman -Ss "+query, query, parsePacmanSearch)
}

// parsePacmanSearch handles pacman's "repo/name version" header lines, each
// followed by an indented description line. An "[installed]" suffix on the
// header marks locally present packages.
func parsePacmanSearch(stdout string) []PackageInfo {
	var packages []PackageInfo
	for _, line := range strings.Split(stdout, "\n") {
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, " ") {
			if match := pacmanSearchHeader.FindStringSubmatch(line); match != nil {
				packages = append(packages, PackageInfo{
					Name:      match[1],
					Version:   match[2],
					Installed: strings.Contains(line, "[installed"),
					Available: true,
				})
			}
		} else if len(packages) > 0 {
			last := &packages[len(packages)-1]
			if last.Description == "" {
				last.Description = strings.TrimSpace(line)
			}
		}
	}
	return packages
}

func (m *pacmanManager) GetPackageInfo(ctx context.Context, name string) (*PackageInfo, error) {
	result := m.query(ctx, "pacman -Si "+name)
	if result == nil || !result.Success() {
		return nil, nil
	}

	fields := parseKeyValues(result.Stdout)
	return &PackageInfo{
		Name:        name,
		Version:     fields["Version"],
		Description: fields["Description"],
		Installed:   m.IsPackageInstalled(ctx, name),
		Available:   true,
	}, nil
}

func (m *pacmanManager) UpgradeSystem(ctx context.Context, onProgress ProgressFunc) (bool, error) {
	if onProgress != nil {
		onProgress("Synchronizing package databases...")
	}
	// -Syu in one invocation; a plain -Sy followed by -Su risks partial
	// upgrades, but the cache gate has already been satisfied either way.
	result, err := m.runner.Execute(ctx, "pacman -Syu --noconfirm", executorUpgradeOptions(onProgress))
	if err != nil {
		return false, err
	}
	if result.Success() {
		m.cacheUpdated = true
	}
	return result.Success(), nil
}

var pacmanCounter = regexp.MustCompile(`\(\s*(\d+)/(\d+)\)`)

func (m *pacmanManager) ParseOutput(output string) ProgressInfo {
	info := neutralProgress()

	switch {
	case strings.Contains(output, "resolving dependencies"):
		info.CurrentAction = "Resolving dependencies"
	case strings.Contains(output, "looking for conflicting packages"):
		info.CurrentAction = "Checking for conflicts"
	case strings.Contains(output, ":: Retrieving packages"):
		info.CurrentAction = "Downloading packages"
	case strings.Contains(output, "checking keyring"):
		info.CurrentAction = "Checking keyring"
	case strings.Contains(output, "checking package integrity"):
		info.CurrentAction = "Checking package integrity"
	case strings.Contains(output, "installing "):
		info.CurrentAction = "Installing packages"
	case strings.Contains(output, "upgrading "):
		info.CurrentAction = "Upgrading packages"
	}

	if match := pacmanCounter.FindStringSubmatch(output); match != nil {
		current, _ := strconv.Atoi(match[1])
		total, _ := strconv.Atoi(match[2])
		if total > 0 {
			info.Progress = current * 100 / total
		}
	}
	return info
}

// extractPacmanError maps pacman's stderr vocabulary to a human-readable
// reason for one package. Matching depends on the forced C locale.
func extractPacmanError(stderr, pkg string) string {
	switch {
	case strings.Contains(stderr, "error: target not found: "+pkg):
		return fmt.Sprintf("Package '%s' not found in repositories", pkg)
	case strings.Contains(stderr, "error: failed to commit transaction (conflicting files)"):
		return "Conflicting files on disk"
	case strings.Contains(stderr, "error: failed to prepare transaction"):
		return "Could not prepare transaction"
	}
	if line, ok := firstLineWithPrefix(stderr, "error:"); ok {
		return line
	}
	return "Installation failed"
}
