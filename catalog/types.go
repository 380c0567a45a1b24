// Package catalog loads and merges the YAML catalogs of installable
// applications and system tweaks.
package catalog

import (
	"gopkg.in/yaml.v3"

	"github.com/distroforge/distroforge/common"
)

// Install methods an app entry may declare per package manager.
const (
	MethodNative = "native"
	MethodCustom = "custom"
)

// InstallMethod describes how an application is installed under one package
// manager: either a list of native packages or a list of raw shell commands.
type InstallMethod struct {
	Method   string   `yaml:"method"`
	Packages []string `yaml:"packages,omitempty"`
	Commands []string `yaml:"commands,omitempty"`
}

// IsNative reports whether the method installs native packages. An absent
// method field means native.
func (m InstallMethod) IsNative() bool {
	return m.Method == "" || m.Method == MethodNative
}

// App is one installable application entry.
type App struct {
	ID          string                   `yaml:"id"`
	Name        string                   `yaml:"name"`
	Description string                   `yaml:"description"`
	Install     map[string]InstallMethod `yaml:"install"`
	Tags        []string                 `yaml:"tags,omitempty"`
	Category    string                   `yaml:"-"`
}

// SupportsManager reports whether the app can be installed with the given
// package manager, counting flatpak as a universal alternative.
func (a App) SupportsManager(manager string) bool {
	if _, ok := a.Install[manager]; ok {
		return true
	}
	_, ok := a.Install[common.ManagerFlatpak]
	return ok
}

// Category groups applications in the catalog.
type Category struct {
	Name         string `yaml:"name"`
	Icon         string `yaml:"icon,omitempty"`
	Applications []App  `yaml:"applications"`
}

// AppConfig is the merged application catalog.
type AppConfig struct {
	Categories []Category `yaml:"categories"`
}

// Apps flattens the catalog into a single list with Category filled in.
func (c *AppConfig) Apps() []App {
	var apps []App
	for _, category := range c.Categories {
		for _, app := range category.Applications {
			app.Category = category.Name
			apps = append(apps, app)
		}
	}
	return apps
}

// FindApp returns the app with the given id, if present.
func (c *AppConfig) FindApp(id string) (App, bool) {
	for _, app := range c.Apps() {
		if app.ID == id {
			return app, true
		}
	}
	return App{}, false
}

// TweakCommand is one step of a tweak: a shell command plus a human-readable
// description shown while it runs.
type TweakCommand struct {
	Command     string `yaml:"command"`
	Description string `yaml:"description,omitempty"`
}

// Verification lets an idempotent tweak detect that it is already applied.
type Verification struct {
	CheckCommand   string `yaml:"check_command"`
	SuccessPattern string `yaml:"success_pattern"`
}

// Tweak is one system-tweak entry. Dependencies are informational only and
// not enforced at execution time.
type Tweak struct {
	ID              string         `yaml:"id"`
	Name            string         `yaml:"name"`
	Description     string         `yaml:"description"`
	Category        string         `yaml:"category,omitempty"`
	Commands        []TweakCommand `yaml:"commands"`
	RequiresRestart bool           `yaml:"requires_restart"`
	Idempotent      bool           `yaml:"idempotent"`
	Dependencies    []string       `yaml:"dependencies,omitempty"`
	Verification    *Verification  `yaml:"verification,omitempty"`
	Section         string         `yaml:"-"`
}

// UnmarshalYAML applies the catalog default of idempotent=true when the
// field is absent.
func (t *Tweak) UnmarshalYAML(value *yaml.Node) error {
	type rawTweak Tweak
	raw := rawTweak{Idempotent: true}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*t = Tweak(raw)
	return nil
}

// Section groups tweaks in the catalog.
type Section struct {
	Name   string  `yaml:"name"`
	Icon   string  `yaml:"icon,omitempty"`
	Tweaks []Tweak `yaml:"tweaks"`
}

// TweakConfig is the merged tweak catalog.
type TweakConfig struct {
	Sections           []Section `yaml:"sections"`
	Distro             string    `yaml:"distro,omitempty"`
	CompatibleVersions []string  `yaml:"compatible_versions,omitempty"`
}

// Tweaks flattens the catalog into a single list with Section filled in.
func (c *TweakConfig) Tweaks() []Tweak {
	var tweaks []Tweak
	for _, section := range c.Sections {
		for _, tweak := range section.Tweaks {
			tweak.Section = section.Name
			tweaks = append(tweaks, tweak)
		}
	}
	return tweaks
}

// FindTweak returns the tweak with the given id, if present.
func (c *TweakConfig) FindTweak(id string) (Tweak, bool) {
	for _, tweak := range c.Tweaks() {
		if tweak.ID == id {
			return tweak, true
		}
	}
	return Tweak{}, false
}
