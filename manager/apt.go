package manager

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/distroforge/distroforge/common"
)

// aptManager drives APT on Debian-family distributions.
type aptManager struct {
	base
}

func NewAptManager(runner Runner) PackageManager {
	return &aptManager{base: newBase(common.ManagerApt, runner)}
}

func (m *aptManager) UpdateCache(ctx context.Context) (bool, error) {
	return m.updateCacheWith(ctx, "apt update")
}

func (m *aptManager) InstallPackages(ctx context.Context, packages []string, onProgress ProgressFunc) (*InstallResult, error) {
	command := "apt install -y " + strings.Join(packages, " ")
	return m.installWith(ctx, command, packages, true, onProgress,
		m.UpdateCache, m.IsPackageInstalled, extractAptError)
}

func (m *aptManager) IsPackageInstalled(ctx context.Context, name string) bool {
	// dpkg-query is much faster than dpkg -l and needs no lock.
	result := m.query(ctx, fmt.Sprintf("dpkg-query -W -f='${Status}' %s 2>/dev/null", name))
	return result != nil && strings.Contains(result.Stdout, "install ok installed")
}

var aptSearchHeader = regexp.MustCompile(`^([^/]+)/\S+\s+(\S+)`)

func (m *aptManager) SearchPackage(ctx context.Context, query string) ([]PackageInfo, error) {
	return m.searchWith(ctx, "apt search "+query, query, parseAptSearch)
}

// parseAptSearch handles apt's "name/suite version arch" header lines, each
// followed by an indented description line.
func parseAptSearch(stdout string) []PackageInfo {
	var packages []PackageInfo
	for _, line := range strings.Split(stdout, "\n") {
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, " ") {
			if match := aptSearchHeader.FindStringSubmatch(line); match != nil {
				packages = append(packages, PackageInfo{
					Name:      match[1],
					Version:   match[2],
					Available: true,
				})
			}
		} else if len(packages) > 0 && strings.HasPrefix(line, "  ") {
			last := &packages[len(packages)-1]
			if last.Description == "" {
				last.Description = strings.TrimSpace(line)
			}
		}
	}
	return packages
}

func (m *aptManager) GetPackageInfo(ctx context.Context, name string) (*PackageInfo, error) {
	result := m.query(ctx, "apt show "+name)
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

func (m *aptManager) UpgradeSystem(ctx context.Context, onProgress ProgressFunc) (bool, error) {
	if onProgress != nil {
		onProgress("Updating package lists...")
	}
	// full-upgrade rather than upgrade so held-back dependency changes are
	// resolved too.
	return m.upgradeWith(ctx, "apt full-upgrade -y", true, onProgress, m.UpdateCache)
}

var aptProgress = regexp.MustCompile(`Progress:\s*\[(\d+)%\]`)

func (m *aptManager) ParseOutput(output string) ProgressInfo {
	info := neutralProgress()

	if match := aptProgress.FindStringSubmatch(output); match != nil {
		if pct, err := strconv.Atoi(match[1]); err == nil {
			info.Progress = pct
		}
	}

	switch {
	case strings.Contains(output, "Reading package lists"):
		info.CurrentAction = "Reading package lists"
	case strings.Contains(output, "Building dependency tree"):
		info.CurrentAction = "Building dependency tree"
	case strings.Contains(output, "Reading state information"):
		info.CurrentAction = "Reading state information"
	case strings.Contains(output, "The following NEW packages will be installed"):
		info.CurrentAction = "Calculating packages to install"
	case strings.Contains(output, "Unpacking"):
		info.CurrentAction = "Unpacking packages"
	case strings.Contains(output, "Setting up"):
		info.CurrentAction = "Setting up packages"
	case strings.Contains(output, "Processing triggers"):
		info.CurrentAction = "Processing triggers"
	case strings.Contains(output, "Fetched"):
		info.CurrentAction = "Downloading packages"
	}
	return info
}

// extractAptError maps APT's stderr vocabulary to a human-readable reason
// for one package. Matching depends on the forced C locale.
func extractAptError(stderr, pkg string) string {
	switch {
	case strings.Contains(stderr, "E: Unable to locate package "+pkg):
		return fmt.Sprintf("Package '%s' not found in repositories", pkg)
	case strings.Contains(stderr, "E: Unmet dependencies"):
		return "Unmet dependencies"
	case strings.Contains(stderr, "E: Package") && strings.Contains(stderr, "has no installation candidate"):
		return "No installation candidate available"
	}
	if line, ok := firstLineWithPrefix(stderr, "E:"); ok {
		return line
	}
	return "Installation failed"
}
