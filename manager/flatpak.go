package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/distroforge/distroforge/common"
)

// flatpakManager installs from Flathub as the distro-independent alternative
// source. Flatpak manages its own privileges through polkit, so none of its
// commands run under sudo.
type flatpakManager struct {
	base
}

func NewFlatpakManager(runner Runner) PackageManager {
	return &flatpakManager{base: newBase(common.ManagerFlatpak, runner)}
}

func (m *flatpakManager) UpdateCache(ctx context.Context) (bool, error) {
	result, err := m.runner.Execute(ctx, "flatpak update --appstream --noninteractive",
		queryOptionsWithTimeout())
	if err != nil {
		return false, err
	}
	if result.Success() {
		m.cacheUpdated = true
	}
	return result.Success(), nil
}

func (m *flatpakManager) InstallPackages(ctx context.Context, refs []string, onProgress ProgressFunc) (*InstallResult, error) {
	command := "flatpak install -y --noninteractive flathub " + strings.Join(refs, " ")
	return m.installWith(ctx, command, refs, false, onProgress,
		m.UpdateCache, m.IsPackageInstalled, extractFlatpakError)
}

func (m *flatpakManager) IsPackageInstalled(ctx context.Context, ref string) bool {
	result := m.query(ctx, "flatpak info "+ref)
	return result != nil && result.Success()
}

func (m *flatpakManager) SearchPackage(ctx context.Context, query string) ([]PackageInfo, error) {
	return m.searchWith(ctx, "flatpak search --columns=application,version,description "+query,
		query, parseFlatpakSearch)
}

// parseFlatpakSearch handles the tab-separated columns requested above.
func parseFlatpakSearch(stdout string) []PackageInfo {
	var packages []PackageInfo
	for _, line := range strings.Split(stdout, "\n") {
		parts := strings.Split(line, "\t")
		if len(parts) < 1 || strings.TrimSpace(parts[0]) == "" {
			continue
		}
		info := PackageInfo{Name: strings.TrimSpace(parts[0]), Available: true}
		if len(parts) > 1 {
			info.Version = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			info.Description = strings.TrimSpace(parts[2])
		}
		packages = append(packages, info)
	}
	return packages
}

func (m *flatpakManager) GetPackageInfo(ctx context.Context, ref string) (*PackageInfo, error) {
	result := m.query(ctx, "flatpak remote-info flathub "+ref)
	if result == nil || !result.Success() {
		return nil, nil
	}

	fields := parseKeyValues(result.Stdout)
	return &PackageInfo{
		Name:        ref,
		Version:     fields["Version"],
		Description: fields["Subject"],
		Installed:   m.IsPackageInstalled(ctx, ref),
		Available:   true,
	}, nil
}

func (m *flatpakManager) UpgradeSystem(ctx context.Context, onProgress ProgressFunc) (bool, error) {
	if onProgress != nil {
		onProgress("Updating flatpaks...")
	}
	return m.upgradeWith(ctx, "flatpak update -y --noninteractive", false, onProgress, m.UpdateCache)
}

func (m *flatpakManager) ParseOutput(output string) ProgressInfo {
	info := neutralProgress()

	switch {
	case strings.Contains(output, "Looking for matches"):
		info.CurrentAction = "Resolving applications"
	case strings.Contains(output, "Downloading"), strings.Contains(output, "Fetching"):
		info.CurrentAction = "Downloading applications"
	case strings.Contains(output, "Installing"):
		info.CurrentAction = "Installing applications"
	case strings.Contains(output, "Updating"):
		info.CurrentAction = "Updating applications"
	}
	return info
}

// extractFlatpakError maps flatpak's stderr vocabulary to a human-readable
// reason for one ref.
func extractFlatpakError(stderr, ref string) string {
	switch {
	case strings.Contains(stderr, "No remote refs found") ||
		strings.Contains(stderr, "Nothing matches "+ref):
		return fmt.Sprintf("Application '%s' not found on Flathub", ref)
	case strings.Contains(stderr, "no remote named"):
		return "Flathub remote is not configured"
	}
	if line, ok := firstLineWithPrefix(stderr, "error:"); ok {
		return line
	}
	return "Installation failed"
}
