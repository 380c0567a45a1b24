package catalog

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/distroforge/distroforge/distro"
	"github.com/distroforge/distroforge/logger"
)

// Loader reads app and tweak catalogs from a configuration directory laid
// out as <dir>/apps/{common,<distro>}.yaml and <dir>/tweaks/{common,<distro>}.yaml.
type Loader struct {
	fs  afero.Fs
	dir string
}

func NewLoader(fs afero.Fs, dir string) *Loader {
	return &Loader{fs: fs, dir: dir}
}

// LoadApps loads and merges the application catalogs for the detected
// distribution. Missing catalog files contribute nothing; malformed YAML is
// an error.
func (l *Loader) LoadApps(info *distro.Info) (*AppConfig, error) {
	var commonCfg, distroCfg AppConfig

	if err := l.loadYAML(filepath.Join(l.dir, "apps", "common.yaml"), &commonCfg); err != nil {
		return nil, err
	}
	if err := l.loadYAML(filepath.Join(l.dir, "apps", info.Name+".yaml"), &distroCfg); err != nil {
		return nil, err
	}

	merged := MergeAppConfigs(commonCfg, distroCfg, info.PackageManager)
	return &merged, nil
}

// LoadTweaks loads and merges the tweak catalogs for the detected
// distribution. A compatible_versions list that does not include the running
// version is logged as a warning but does not fail the load.
func (l *Loader) LoadTweaks(info *distro.Info) (*TweakConfig, error) {
	var commonCfg, distroCfg TweakConfig

	if err := l.loadYAML(filepath.Join(l.dir, "tweaks", "common.yaml"), &commonCfg); err != nil {
		return nil, err
	}
	if err := l.loadYAML(filepath.Join(l.dir, "tweaks", info.Name+".yaml"), &distroCfg); err != nil {
		return nil, err
	}

	merged := MergeTweakConfigs(commonCfg, distroCfg)

	if len(merged.CompatibleVersions) > 0 && info.Version != "" {
		if !containsString(merged.CompatibleVersions, info.Version) {
			logger.Log.Warnf("tweak catalog for %s lists compatible versions %v, running %s",
				info.Name, merged.CompatibleVersions, info.Version)
		}
	}
	return &merged, nil
}

func (l *Loader) loadYAML(path string, out interface{}) error {
	exists, err := afero.Exists(l.fs, path)
	if err != nil {
		return errors.Wrapf(err, "failed to stat catalog file %s", path)
	}
	if !exists {
		return nil
	}

	content, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return errors.Wrapf(err, "failed to read catalog file %s", path)
	}
	if err := yaml.Unmarshal(content, out); err != nil {
		return errors.Wrapf(err, "failed to parse catalog YAML %s", path)
	}
	return nil
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
