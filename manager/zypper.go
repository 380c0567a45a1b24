package manager

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/distroforge/distroforge/common"
)

// zypperManager drives zypper on openSUSE-family distributions.
type zypperManager struct {
	base
}

func NewZypperManager(runner Runner) PackageManager {
	return &zypperManager{base: newBase(common.ManagerZypper, runner)}
}

func (m *zypperManager) UpdateCache(ctx context.Context) (bool, error) {
	// Exit code 4 (ZYPPER_EXIT_ERR_ZYPP) can mean a single repository
	// failed while the rest refreshed; treat only a clean refresh as
	// success.
	return m.updateCacheWith(ctx, "zypper --non-interactive refresh")
}

func (m *zypperManager) InstallPackages(ctx context.Context, packages []string, onProgress ProgressFunc) (*InstallResult, error) {
	command := "zypper --non-interactive install -y " + strings.Join(packages, " ")
	return m.installWith(ctx, command, packages, true, onProgress,
		m.UpdateCache, m.IsPackageInstalled, extractZypperError)
}

func (m *zypperManager) IsPackageInstalled(ctx context.Context, name string) bool {
	result := m.query(ctx, "rpm -q "+name)
	return result != nil && result.Success()
}

func (m *zypperManager) SearchPackage(ctx context.Context, query string) ([]PackageInfo, error) {
	return m.searchWith(ctx, "zypper --non-interactive search "+query, query, parseZypperSearch)
}

// parseZypperSearch handles zypper's pipe-separated table:
// "S | Name | Summary | Type" with an "i" status for installed packages.
func parseZypperSearch(stdout string) []PackageInfo {
	var packages []PackageInfo
	for _, line := range strings.Split(stdout, "\n") {
		if !strings.Contains(line, "|") || strings.HasPrefix(line, "--") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 3 {
			continue
		}
		status := strings.TrimSpace(parts[0])
		name := strings.TrimSpace(parts[1])
		if name == "" || name == "Name" {
			continue
		}
		packages = append(packages, PackageInfo{
			Name:        name,
			Description: strings.TrimSpace(parts[2]),
			Installed:   strings.Contains(status, "i"),
			Available:   true,
		})
	}
	return packages
}

func (m *zypperManager) GetPackageInfo(ctx context.Context, name string) (*PackageInfo, error) {
	result := m.query(ctx, "zypper --non-interactive info "+name)
	if result == nil || !result.Success() {
		return nil, nil
	}
	// zypper exits 0 even for unknown packages; it reports them in text.
	if strings.Contains(result.Output(), "not found in package names") {
		return nil, nil
	}

	fields := parseKeyValues(result.Stdout)
	if fields["Name"] == "" && fields["Version"] == "" {
		return nil, nil
	}
	return &PackageInfo{
		Name:        name,
		Version:     fields["Version"],
		Description: fields["Summary"],
		Installed:   m.IsPackageInstalled(ctx, name),
		Available:   true,
	}, nil
}

func (m *zypperManager) UpgradeSystem(ctx context.Context, onProgress ProgressFunc) (bool, error) {
	if onProgress != nil {
		onProgress("Refreshing repositories...")
	}
	return m.upgradeWith(ctx, "zypper --non-interactive update", true, onProgress, m.UpdateCache)
}

var zypperCounter = regexp.MustCompile(`\((\d+)/(\d+)\)`)

func (m *zypperManager) ParseOutput(output string) ProgressInfo {
	info := neutralProgress()

	switch {
	case strings.Contains(output, "Refreshing service"), strings.Contains(output, "Retrieving repository"):
		info.CurrentAction = "Refreshing repositories"
	case strings.Contains(output, "Resolving package dependencies"):
		info.CurrentAction = "Resolving dependencies"
	case strings.Contains(output, "Retrieving package"):
		info.CurrentAction = "Downloading packages"
	case strings.Contains(output, "Checking for file conflicts"):
		info.CurrentAction = "Checking for file conflicts"
	case strings.Contains(output, "Installing:"):
		info.CurrentAction = "Installing packages"
	}

	if match := zypperCounter.FindStringSubmatch(output); match != nil {
		current, _ := strconv.Atoi(match[1])
		total, _ := strconv.Atoi(match[2])
		if total > 0 {
			info.Progress = current * 100 / total
		}
	}
	return info
}

// extractZypperError maps zypper's stderr vocabulary to a human-readable
// reason for one package. Matching depends on the forced C locale.
func extractZypperError(stderr, pkg string) string {
	switch {
	case strings.Contains(stderr, "'"+pkg+"' not found in package names"):
		return fmt.Sprintf("Package '%s' not found in repositories", pkg)
	case strings.Contains(stderr, "Problem: nothing provides"):
		return "Unmet dependencies"
	case strings.Contains(stderr, "conflicts with"):
		return "Package conflicts with installed packages"
	}
	if line, ok := firstLineWithPrefix(stderr, "Problem:"); ok {
		return line
	}
	return "Installation failed"
}
