package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distroforge/distroforge/catalog"
	"github.com/distroforge/distroforge/executor"
	"github.com/distroforge/distroforge/manager"
)

// fakeManager records install requests and answers with a canned result.
type fakeManager struct {
	name      string
	installed [][]string
	result    *manager.InstallResult
	err       error
}

func (f *fakeManager) Name() string { return f.name }

func (f *fakeManager) InstallPackages(ctx context.Context, packages []string, onProgress manager.ProgressFunc) (*manager.InstallResult, error) {
	f.installed = append(f.installed, packages)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &manager.InstallResult{Success: true, PackagesInstalled: packages}, nil
}

func (f *fakeManager) UpdateCache(ctx context.Context) (bool, error) { return true, nil }
func (f *fakeManager) IsPackageInstalled(ctx context.Context, name string) bool {
	return false
}
func (f *fakeManager) SearchPackage(ctx context.Context, query string) ([]manager.PackageInfo, error) {
	return nil, nil
}
func (f *fakeManager) GetPackageInfo(ctx context.Context, name string) (*manager.PackageInfo, error) {
	return nil, nil
}
func (f *fakeManager) UpgradeSystem(ctx context.Context, onProgress manager.ProgressFunc) (bool, error) {
	return true, nil
}
func (f *fakeManager) ParseOutput(output string) manager.ProgressInfo {
	return manager.ProgressInfo{Progress: -1}
}

type fakeTerminal struct {
	runs []terminalRun
	code int
}

type terminalRun struct {
	commands    []string
	useSudo     bool
	description string
}

func (f *fakeTerminal) RunInteractive(commands []string, useSudo bool, description string) executor.TerminalResult {
	f.runs = append(f.runs, terminalRun{commands: commands, useSudo: useSudo, description: description})
	return executor.TerminalResult{ExitCode: f.code, Success: f.code == 0}
}

func appWith(id, name string, install map[string]catalog.InstallMethod) catalog.App {
	return catalog.App{ID: id, Name: name, Install: install}
}

func TestInstallApps_PartitionsByMethod(t *testing.T) {
	native := &fakeManager{name: "apt"}
	flatpak := &fakeManager{name: "flatpak"}
	terminal := &fakeTerminal{}
	svc := NewInstallService(native, flatpak, terminal)

	apps := []catalog.App{
		appWith("htop", "htop", map[string]catalog.InstallMethod{
			"apt": {Packages: []string{"htop"}},
		}),
		appWith("vim", "Vim", map[string]catalog.InstallMethod{
			"apt": {Method: catalog.MethodNative, Packages: []string{"vim", "vim-common"}},
		}),
		appWith("spotify", "Spotify", map[string]catalog.InstallMethod{
			"flatpak": {Packages: []string{"com.spotify.Client"}},
		}),
		appWith("vscode", "VS Code", map[string]catalog.InstallMethod{
			"apt": {Method: catalog.MethodCustom, Commands: []string{"install-code.sh"}},
		}),
	}

	report, err := svc.InstallApps(context.Background(), apps, nil)
	require.NoError(t, err)

	require.Len(t, native.installed, 1)
	assert.Equal(t, []string{"htop", "vim", "vim-common"}, native.installed[0],
		"native packages combine into one transaction")

	require.Len(t, flatpak.installed, 1)
	assert.Equal(t, []string{"com.spotify.Client"}, flatpak.installed[0])

	require.Len(t, terminal.runs, 1)
	assert.Equal(t, []string{"install-code.sh"}, terminal.runs[0].commands)
	assert.True(t, terminal.runs[0].useSudo)
	assert.Equal(t, "Installing VS Code", terminal.runs[0].description)

	assert.True(t, report.Success())
	assert.NotEmpty(t, report.Session)
}

func TestInstallApps_FlatpakUnavailable(t *testing.T) {
	native := &fakeManager{name: "pacman"}
	svc := NewInstallService(native, nil, &fakeTerminal{})

	apps := []catalog.App{
		appWith("spotify", "Spotify", map[string]catalog.InstallMethod{
			"flatpak": {Packages: []string{"com.spotify.Client"}},
		}),
	}

	report, err := svc.InstallApps(context.Background(), apps, nil)
	require.NoError(t, err)

	assert.False(t, report.Success())
	require.NotNil(t, report.Flatpak)
	assert.Equal(t, []string{"com.spotify.Client"}, report.Flatpak.PackagesFailed)
	assert.Equal(t, "flatpak is not available on this system",
		report.Flatpak.Errors["com.spotify.Client"])
}

func TestInstallApps_CustomFailureFailsReport(t *testing.T) {
	native := &fakeManager{name: "apt"}
	terminal := &fakeTerminal{code: 1}
	svc := NewInstallService(native, nil, terminal)

	apps := []catalog.App{
		appWith("vscode", "VS Code", map[string]catalog.InstallMethod{
			"apt": {Method: catalog.MethodCustom, Commands: []string{"fails.sh"}},
		}),
	}

	report, err := svc.InstallApps(context.Background(), apps, nil)
	require.NoError(t, err)

	assert.False(t, report.Success())
	assert.False(t, report.Custom["vscode"].Success)
	assert.Equal(t, 1, report.Custom["vscode"].ExitCode)
}

func TestInstallApps_PrivilegeErrorPropagates(t *testing.T) {
	native := &fakeManager{name: "apt", err: &executor.PrivilegeError{Reason: "denied"}}
	svc := NewInstallService(native, nil, &fakeTerminal{})

	apps := []catalog.App{
		appWith("htop", "htop", map[string]catalog.InstallMethod{
			"apt": {Packages: []string{"htop"}},
		}),
	}

	_, err := svc.InstallApps(context.Background(), apps, nil)
	require.Error(t, err)
	assert.True(t, executor.IsPrivilegeError(err))
}

func TestInstallReport_Success(t *testing.T) {
	assert.True(t, (&InstallReport{}).Success())
	assert.False(t, (&InstallReport{
		Native: &manager.InstallResult{Success: false},
	}).Success())
	assert.False(t, (&InstallReport{
		Custom: map[string]executor.TerminalResult{"x": {ExitCode: 130}},
	}).Success())
	assert.True(t, (&InstallReport{
		Native: &manager.InstallResult{Success: true},
		Custom: map[string]executor.TerminalResult{"x": {Success: true}},
	}).Success())
}
