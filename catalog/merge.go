package catalog

// MergeAppConfigs merges the common catalog with a distro-specific one for
// the given package manager. Apps that support neither the manager nor
// flatpak are dropped, duplicate ids keep their first occurrence, and
// categories that end up empty are omitted. Category order follows the
// common catalog, with distro-only categories appended.
func MergeAppConfigs(commonCfg, distroCfg AppConfig, manager string) AppConfig {
	var order []string
	merged := make(map[string]*Category)

	addCategory := func(src Category) *Category {
		if existing, ok := merged[src.Name]; ok {
			return existing
		}
		category := &Category{Name: src.Name, Icon: src.Icon}
		merged[src.Name] = category
		order = append(order, src.Name)
		return category
	}

	for _, src := range commonCfg.Categories {
		category := addCategory(src)
		for _, app := range src.Applications {
			if app.SupportsManager(manager) {
				category.Applications = append(category.Applications, app)
			}
		}
	}

	for _, src := range distroCfg.Categories {
		category := addCategory(src)
		for _, app := range src.Applications {
			if !app.SupportsManager(manager) {
				continue
			}
			if !containsAppID(category.Applications, app.ID) {
				category.Applications = append(category.Applications, app)
			}
		}
	}

	var result AppConfig
	for _, name := range order {
		if category := merged[name]; len(category.Applications) > 0 {
			result.Categories = append(result.Categories, *category)
		}
	}
	return result
}

// MergeTweakConfigs merges common and distro-specific tweak catalogs.
// Distro sections take priority; common tweaks are appended only when their
// id is not already present in the corresponding section. Empty sections
// are omitted.
func MergeTweakConfigs(commonCfg, distroCfg TweakConfig) TweakConfig {
	var order []string
	merged := make(map[string]*Section)

	addSection := func(src Section) *Section {
		if existing, ok := merged[src.Name]; ok {
			return existing
		}
		section := &Section{Name: src.Name, Icon: src.Icon}
		merged[src.Name] = section
		order = append(order, src.Name)
		return section
	}

	for _, src := range distroCfg.Sections {
		section := addSection(src)
		section.Tweaks = append(section.Tweaks, src.Tweaks...)
	}

	for _, src := range commonCfg.Sections {
		section := addSection(src)
		for _, tweak := range src.Tweaks {
			if !containsTweakID(section.Tweaks, tweak.ID) {
				section.Tweaks = append(section.Tweaks, tweak)
			}
		}
	}

	result := TweakConfig{
		Distro:             distroCfg.Distro,
		CompatibleVersions: distroCfg.CompatibleVersions,
	}
	for _, name := range order {
		if section := merged[name]; len(section.Tweaks) > 0 {
			result.Sections = append(result.Sections, *section)
		}
	}
	return result
}

func containsAppID(apps []App, id string) bool {
	for _, app := range apps {
		if app.ID == id {
			return true
		}
	}
	return false
}

func containsTweakID(tweaks []Tweak, id string) bool {
	for _, tweak := range tweaks {
		if tweak.ID == id {
			return true
		}
	}
	return false
}
