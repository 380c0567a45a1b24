package manager

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/distroforge/distroforge/common"
)

// dnfManager drives DNF on Fedora-family distributions.
type dnfManager struct {
	base
}

func NewDnfManager(runner Runner) PackageManager {
	return &dnfManager{base: newBase(common.ManagerDnf, runner)}
}

func (m *dnfManager) UpdateCache(ctx context.Context) (bool, error) {
	// check-update exits 100 when updates are available and 0 when none
	// are; both mean the metadata refresh worked.
	return m.updateCacheWith(ctx, "dnf check-update", 0, 100)
}

func (m *dnfManager) InstallPackages(ctx context.Context, packages []string, onProgress ProgressFunc) (*InstallResult, error) {
	command := "dnf install -y " + strings.Join(packages, " ")
	return m.installWith(ctx, command, packages, true, onProgress,
		m.UpdateCache, m.IsPackageInstalled, extractDnfError)
}

func (m *dnfManager) IsPackageInstalled(ctx context.Context, name string) bool {
	// rpm -q is much faster than dnf list installed.
	result := m.query(ctx, "rpm -q "+name)
	return result != nil && result.Success()
}

func (m *dnfManager) SearchPackage(ctx context.Context, query string) ([]PackageInfo, error) {
	return m.searchWith(ctx, "dnf search "+query, query, parseDnfSearch)
}

// parseDnfSearch handles dnf's banner separator followed by
// "name.arch : description" lines.
func parseDnfSearch(stdout string) []PackageInfo {
	var packages []PackageInfo
	inResults := false

	for _, line := range strings.Split(stdout, "\n") {
		if strings.Contains(line, "=") && len(line) > 50 {
			inResults = true
			continue
		}
		if !inResults {
			continue
		}
		nameArch, description, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name := strings.TrimSpace(nameArch)
		if name == "" {
			continue
		}
		if dot := strings.LastIndex(name, "."); dot > 0 {
			name = name[:dot]
		}
		packages = append(packages, PackageInfo{
			Name:        name,
			Description: strings.TrimSpace(description),
			Available:   true,
		})
	}
	return packages
}

func (m *dnfManager) GetPackageInfo(ctx context.Context, name string) (*PackageInfo, error) {
	result := m.query(ctx, "dnf info "+name)
	if result == nil || !result.Success() {
		return nil, nil
	}

	fields := parseKeyValues(result.Stdout)
	return &PackageInfo{
		Name:        name,
		Version:     fields["Version"],
		Description: fields["Summary"],
		Installed:   m.IsPackageInstalled(ctx, name),
		Available:   true,
	}, nil
}

func (m *dnfManager) UpgradeSystem(ctx context.Context, onProgress ProgressFunc) (bool, error) {
	if onProgress != nil {
		onProgress("Checking for updates...")
	}
	return m.upgradeWith(ctx, "dnf upgrade -y", true, onProgress, m.UpdateCache)
}

var dnfDownloadCounter = regexp.MustCompile(`\((\d+)/(\d+)\):`)

func (m *dnfManager) ParseOutput(output string) ProgressInfo {
	info := neutralProgress()

	switch {
	case strings.Contains(output, "Downloading Packages:"):
		info.CurrentAction = "Downloading packages"
	case strings.Contains(output, "Installing:"):
		info.CurrentAction = "Installing packages"
	case strings.Contains(output, "Upgrading:"):
		info.CurrentAction = "Upgrading packages"
	case strings.Contains(output, "Running transaction check"):
		info.CurrentAction = "Checking transaction"
	case strings.Contains(output, "Running transaction test"):
		info.CurrentAction = "Testing transaction"
	case strings.Contains(output, "Running transaction"):
		info.CurrentAction = "Running transaction"
	case strings.Contains(output, "Verifying"):
		info.CurrentAction = "Verifying packages"
	case strings.Contains(output, "Complete!"):
		info.CurrentAction = "Complete"
		info.Progress = 100
	}

	// Download counters like "(3/10): pkg.rpm" convert to a percentage.
	if match := dnfDownloadCounter.FindStringSubmatch(output); match != nil {
		current, _ := strconv.Atoi(match[1])
		total, _ := strconv.Atoi(match[2])
		if total > 0 {
			info.Progress = current * 100 / total
		}
	}
	return info
}

// extractDnfError maps DNF's stderr vocabulary to a human-readable reason
// for one package. Matching depends on the forced C locale.
func extractDnfError(stderr, pkg string) string {
	switch {
	case strings.Contains(stderr, "No match for argument: "+pkg):
		return fmt.Sprintf("Package '%s' not found in repositories", pkg)
	case strings.Contains(stderr, "Error: Unable to find a match"):
		return fmt.Sprintf("Package '%s' not available", pkg)
	case strings.Contains(stderr, "conflicts with"):
		return "Package conflicts with installed packages"
	case strings.Contains(stderr, "Insufficient space"):
		return "Insufficient disk space"
	}
	if line, ok := firstLineWithPrefix(stderr, "Error:"); ok {
		return line
	}
	return "Installation failed"
}
