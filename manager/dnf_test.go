package manager

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distroforge/distroforge/executor"
)

const dnfSearchOutput = `Last metadata expiration check: 0:10:01 ago.
============================== Name Exactly Matched: htop ==============================
htop.x86_64 : Interactive CLI process viewer
============================== Name & Summary Matched: htop ============================
htop-devel.x86_64 : Development files for htop
`

func TestDnfSearch_Parse(t *testing.T) {
	packages := parseDnfSearch(dnfSearchOutput)

	require.Len(t, packages, 2)
	assert.Equal(t, "htop", packages[0].Name)
	assert.Equal(t, "Interactive CLI process viewer", packages[0].Description)
	assert.Equal(t, "htop-devel", packages[1].Name)
}

func TestDnfUpdateCache_AcceptsCheckUpdateCodes(t *testing.T) {
	for _, tc := range []struct {
		exitCode int
		want     bool
	}{
		{0, true},
		{100, true}, // updates available
		{1, false},
	} {
		runner := &fakeRunner{
			respond: func(command string, opts executor.Options) *executor.CommandResult {
				if tc.exitCode == 0 {
					return okResult(command, "")
				}
				return failResult(command, tc.exitCode, "")
			},
		}
		mgr := NewDnfManager(runner)

		ok, err := mgr.UpdateCache(context.Background())
		require.NoError(t, err)
		assert.Equal(t, tc.want, ok, "exit code %d", tc.exitCode)
	}
}

func TestDnfInstall_PartialFailure(t *testing.T) {
	runner := &fakeRunner{
		respond: func(command string, opts executor.Options) *executor.CommandResult {
			switch {
			case strings.HasPrefix(command, "dnf check-update"):
				return okResult(command, "")
			case strings.HasPrefix(command, "dnf install"):
				return failResult(command, 1, "No match for argument: bogus-pkg\n")
			case command == "rpm -q htop":
				return okResult(command, "htop-3.2.2-1.fc40.x86_64")
			default:
				return failResult(command, 1, "package bogus-pkg is not installed")
			}
		},
	}
	mgr := NewDnfManager(runner)

	result, err := mgr.InstallPackages(context.Background(), []string{"htop", "bogus-pkg"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"htop"}, result.PackagesInstalled)
	assert.Equal(t, []string{"bogus-pkg"}, result.PackagesFailed)
	assert.Equal(t, "Package 'bogus-pkg' not found in repositories", result.Errors["bogus-pkg"])
}

func TestDnfParseOutput(t *testing.T) {
	mgr := NewDnfManager(&fakeRunner{})

	info := mgr.ParseOutput("(3/10): htop-3.2.2-1.fc40.x86_64.rpm")
	assert.Equal(t, 30, info.Progress)

	info = mgr.ParseOutput("Complete!")
	assert.Equal(t, 100, info.Progress)
	assert.Equal(t, "Complete", info.CurrentAction)

	info = mgr.ParseOutput("Running transaction check")
	assert.Equal(t, "Checking transaction", info.CurrentAction)

	info = mgr.ParseOutput("Downloading Packages:")
	assert.Equal(t, "Downloading packages", info.CurrentAction)
}

func TestExtractDnfError(t *testing.T) {
	assert.Equal(t, "Package 'foo' not found in repositories",
		extractDnfError("No match for argument: foo", "foo"))
	assert.Equal(t, "Package conflicts with installed packages",
		extractDnfError("package foo-1.0 conflicts with bar provided by bar-2.0", "foo"))
	assert.Equal(t, "Insufficient disk space",
		extractDnfError("Error Summary: Insufficient space in download directory", "foo"))
	assert.Equal(t, "Transaction test error", // first Error: line wins
		extractDnfError("Error: Transaction test error", "foo"))
	assert.Equal(t, "Installation failed",
		extractDnfError("", "foo"))
}

func TestDnfGetPackageInfo(t *testing.T) {
	runner := &fakeRunner{
		respond: func(command string, opts executor.Options) *executor.CommandResult {
			switch {
			case strings.HasPrefix(command, "dnf info"):
				return okResult(command, "Name         : htop\nVersion      : 3.2.2\nSummary      : Interactive CLI process viewer\n")
			case strings.HasPrefix(command, "rpm -q"):
				return failResult(command, 1, "")
			default:
				return okResult(command, "")
			}
		},
	}
	mgr := NewDnfManager(runner)

	info, err := mgr.GetPackageInfo(context.Background(), "htop")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "3.2.2", info.Version)
	assert.Equal(t, "Interactive CLI process viewer", info.Description)
	assert.False(t, info.Installed)
}
