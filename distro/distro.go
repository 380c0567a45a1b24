// Package distro identifies the running Linux distribution and the package
// manager that drives it.
package distro

import (
	"bufio"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/distroforge/distroforge/common"
)

// Info describes the detected distribution. It is immutable after detection
// and is only used to select a package manager adapter and catalog files.
type Info struct {
	Name           string   // os-release ID, e.g. "ubuntu", "fedora"
	Version        string   // VERSION_ID, e.g. "24.04"
	Codename       string   // VERSION_CODENAME, e.g. "noble"
	PrettyName     string   // PRETTY_NAME, e.g. "Ubuntu 24.04 LTS"
	PackageManager string   // e.g. "apt", "dnf", "pacman", "zypper"
	IDLike         []string // ID_LIKE, e.g. ["debian"]
}

func (i *Info) String() string {
	return fmt.Sprintf("%s (%s)", i.PrettyName, i.PackageManager)
}

func (i *Info) IsDebianBased() bool {
	return i.Name == "ubuntu" || i.Name == "debian" || contains(i.IDLike, "debian")
}

func (i *Info) IsFedoraBased() bool {
	switch i.Name {
	case "fedora", "rhel", "centos":
		return true
	}
	return contains(i.IDLike, "fedora")
}

func (i *Info) IsArchBased() bool {
	return i.Name == "arch" || i.Name == "manjaro" || contains(i.IDLike, "arch")
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

// managerByDistro maps os-release IDs to the package manager they ship.
var managerByDistro = map[string]string{
	"ubuntu":              common.ManagerApt,
	"debian":              common.ManagerApt,
	"linuxmint":           common.ManagerApt,
	"pop":                 common.ManagerApt,
	"fedora":              common.ManagerDnf,
	"rhel":                common.ManagerDnf,
	"centos":              common.ManagerDnf,
	"rocky":               common.ManagerDnf,
	"almalinux":           common.ManagerDnf,
	"arch":                common.ManagerPacman,
	"manjaro":             common.ManagerPacman,
	"endeavouros":         common.ManagerPacman,
	"opensuse":            common.ManagerZypper,
	"opensuse-tumbleweed": common.ManagerZypper,
	"opensuse-leap":       common.ManagerZypper,
}

// probeOrder is the fallback scan when neither ID nor ID_LIKE is mapped.
var probeOrder = []string{
	common.ManagerApt, common.ManagerDnf, common.ManagerPacman, common.ManagerZypper,
}

// Detector resolves the running distribution from os-release data with an
// lsb_release fallback. The filesystem and executable lookups are injectable
// so tests can run against fixtures.
type Detector struct {
	fs       afero.Fs
	lookPath func(string) (string, error)
	runLSB   func() (string, error)
}

func NewDetector(fs afero.Fs) *Detector {
	return &Detector{
		fs:       fs,
		lookPath: exec.LookPath,
		runLSB: func() (string, error) {
			out, err := exec.Command("lsb_release", "-a").Output()
			return string(out), err
		},
	}
}

// Detect reads /etc/os-release (or /usr/lib/os-release), resolves the
// package manager, and falls back to lsb_release when neither file exists.
func (d *Detector) Detect() (*Info, error) {
	for _, path := range []string{"/etc/os-release", "/usr/lib/os-release"} {
		exists, err := afero.Exists(d.fs, path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to stat %s", path)
		}
		if !exists {
			continue
		}
		release, err := ParseOSRelease(d.fs, path)
		if err != nil {
			return nil, err
		}
		return d.fromOSRelease(release)
	}

	if _, err := d.lookPath("lsb_release"); err == nil {
		return d.detectViaLSBRelease()
	}

	return nil, errors.New("could not find os-release or the lsb_release command")
}

func (d *Detector) fromOSRelease(release map[string]string) (*Info, error) {
	name := strings.ToLower(release["ID"])
	if name == "" {
		return nil, errors.New("os-release does not declare a distribution ID")
	}

	var idLike []string
	if likeStr := release["ID_LIKE"]; likeStr != "" {
		idLike = strings.Fields(likeStr)
	}

	manager, err := d.resolveManager(name, idLike)
	if err != nil {
		return nil, err
	}

	pretty := release["PRETTY_NAME"]
	if pretty == "" {
		pretty = name
	}

	return &Info{
		Name:           name,
		Version:        release["VERSION_ID"],
		Codename:       release["VERSION_CODENAME"],
		PrettyName:     pretty,
		PackageManager: manager,
		IDLike:         idLike,
	}, nil
}

// resolveManager maps the distribution to a package manager: direct ID match
// first, then ID_LIKE entries, and finally whichever supported manager is on
// PATH.
func (d *Detector) resolveManager(name string, idLike []string) (string, error) {
	if manager, ok := managerByDistro[name]; ok {
		return manager, nil
	}
	for _, similar := range idLike {
		if manager, ok := managerByDistro[similar]; ok {
			return manager, nil
		}
	}
	for _, manager := range probeOrder {
		if _, err := d.lookPath(manager); err == nil {
			return manager, nil
		}
	}
	return "", errors.Errorf("could not determine package manager for distribution %q", name)
}

func (d *Detector) detectViaLSBRelease() (*Info, error) {
	output, err := d.runLSB()
	if err != nil {
		return nil, errors.Wrap(err, "lsb_release command failed")
	}

	var id, version, codename, description string
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Distributor ID":
			id = strings.ToLower(value)
		case "Release":
			version = value
		case "Codename":
			codename = value
		case "Description":
			description = value
		}
	}

	if id == "" {
		return nil, errors.New("lsb_release did not provide a distribution ID")
	}

	manager, err := d.resolveManager(id, nil)
	if err != nil {
		return nil, err
	}

	if description == "" {
		description = id
	}
	return &Info{
		Name:           id,
		Version:        version,
		Codename:       codename,
		PrettyName:     description,
		PackageManager: manager,
	}, nil
}

// ParseOSRelease reads an os-release file into a key-value map. Quoting is
// stripped, comments and malformed lines are ignored.
func ParseOSRelease(fs afero.Fs, path string) (map[string]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	release := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"'`)
		release[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return release, nil
}
