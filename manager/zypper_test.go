package manager

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distroforge/distroforge/executor"
)

const zypperSearchOutput = `Loading repository data...
Reading installed packages...

S  | Name     | Summary                    | Type
---+----------+----------------------------+--------
i  | htop     | Interactive process viewer | package
   | htop-vim | htop with vim keybindings  | package
`

func TestZypperSearch_Parse(t *testing.T) {
	packages := parseZypperSearch(zypperSearchOutput)

	require.Len(t, packages, 2)
	assert.Equal(t, "htop", packages[0].Name)
	assert.Equal(t, "Interactive process viewer", packages[0].Description)
	assert.True(t, packages[0].Installed)
	assert.False(t, packages[1].Installed)
}

func TestZypperInstall_CommandShape(t *testing.T) {
	runner := &fakeRunner{}
	mgr := NewZypperManager(runner)

	_, err := mgr.InstallPackages(context.Background(), []string{"htop"}, nil)
	require.NoError(t, err)

	assert.True(t, runner.ran("zypper --non-interactive refresh"))
	assert.True(t, runner.ran("zypper --non-interactive install -y htop"))
}

func TestZypperGetPackageInfo_UnknownPackageExitsZero(t *testing.T) {
	runner := &fakeRunner{
		respond: func(command string, opts executor.Options) *executor.CommandResult {
			return okResult(command, "package 'no-such' not found in package names. Trying capabilities.\nNo provider of 'no-such' found.\n")
		},
	}
	mgr := NewZypperManager(runner)

	info, err := mgr.GetPackageInfo(context.Background(), "no-such")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestZypperGetPackageInfo(t *testing.T) {
	runner := &fakeRunner{
		respond: func(command string, opts executor.Options) *executor.CommandResult {
			switch {
			case strings.HasPrefix(command, "zypper --non-interactive info"):
				return okResult(command, "Name           : htop\nVersion        : 3.2.2-1.5\nSummary        : Interactive process viewer\n")
			case strings.HasPrefix(command, "rpm -q"):
				return okResult(command, "htop-3.2.2-1.5.x86_64")
			default:
				return okResult(command, "")
			}
		},
	}
	mgr := NewZypperManager(runner)

	info, err := mgr.GetPackageInfo(context.Background(), "htop")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "3.2.2-1.5", info.Version)
	assert.True(t, info.Installed)
}

func TestZypperParseOutput(t *testing.T) {
	mgr := NewZypperManager(&fakeRunner{})

	info := mgr.ParseOutput("Retrieving package htop-3.2.2 (2/8), 341.2 KiB")
	assert.Equal(t, 25, info.Progress)
	assert.Equal(t, "Downloading packages", info.CurrentAction)

	info = mgr.ParseOutput("Resolving package dependencies...")
	assert.Equal(t, "Resolving dependencies", info.CurrentAction)
}

func TestExtractZypperError(t *testing.T) {
	assert.Equal(t, "Package 'foo' not found in repositories",
		extractZypperError("'foo' not found in package names", "foo"))
	assert.Equal(t, "Unmet dependencies",
		extractZypperError("Problem: nothing provides libbar needed by foo", "foo"))
	assert.Equal(t, "Package conflicts with installed packages",
		extractZypperError("Problem: the to be installed foo conflicts with baz", "foo"))
	assert.Equal(t, "repository 'packman' is invalid",
		extractZypperError("Problem: repository 'packman' is invalid", "foo"))
	assert.Equal(t, "Installation failed",
		extractZypperError("", "foo"))
}
