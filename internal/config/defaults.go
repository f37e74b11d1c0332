package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			CaseFiles: []string{"cases/**/*.yaml", "cases/**/*.yml"},
		},
		Match: MatchConfig{
			TimeoutMS: 300,
		},
		Output: OutputConfig{
			DefaultFormat: "yaml",
		},
		Serve: ServeConfig{
			Addr:                     "127.0.0.1:8080",
			LogMaxSizeMB:             10,
			LogMaxBackups:            3,
			InactivityTimeoutMinutes: 30,
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	// Merge Catalog config
	result.Catalog = mergeCatalogConfig(loaded.Catalog, defaults.Catalog)

	// Merge Match config
	result.Match = mergeMatchConfig(loaded.Match, defaults.Match)

	// Merge Output config
	result.Output = mergeOutputConfig(loaded.Output, defaults.Output)

	// Merge Serve config
	result.Serve = mergeServeConfig(loaded.Serve, defaults.Serve)

	return result
}

func mergeCatalogConfig(loaded, defaults CatalogConfig) CatalogConfig {
	result := CatalogConfig{}

	// Use loaded case file globs if provided, otherwise defaults
	if len(loaded.CaseFiles) > 0 {
		result.CaseFiles = loaded.CaseFiles
	} else {
		result.CaseFiles = defaults.CaseFiles
	}

	// Additional request keys have no default; loaded wins as-is
	result.AdditionalRequestKeys = loaded.AdditionalRequestKeys

	// Store: use loaded if non-empty
	if loaded.Store != "" {
		result.Store = loaded.Store
	} else {
		result.Store = defaults.Store
	}

	return result
}

func mergeMatchConfig(loaded, defaults MatchConfig) MatchConfig {
	result := MatchConfig{}

	// TimeoutMS: use loaded if non-zero
	if loaded.TimeoutMS != 0 {
		result.TimeoutMS = loaded.TimeoutMS
	} else {
		result.TimeoutMS = defaults.TimeoutMS
	}

	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	result := OutputConfig{}

	// DefaultFormat: use loaded if non-empty
	if loaded.DefaultFormat != "" {
		result.DefaultFormat = loaded.DefaultFormat
	} else {
		result.DefaultFormat = defaults.DefaultFormat
	}

	return result
}

func mergeServeConfig(loaded, defaults ServeConfig) ServeConfig {
	result := ServeConfig{}

	// Addr: use loaded if non-empty
	if loaded.Addr != "" {
		result.Addr = loaded.Addr
	} else {
		result.Addr = defaults.Addr
	}

	// LogFile: use loaded if non-empty (no default; empty logs to stderr)
	result.LogFile = loaded.LogFile

	// LogMaxSizeMB: use loaded if non-zero
	if loaded.LogMaxSizeMB != 0 {
		result.LogMaxSizeMB = loaded.LogMaxSizeMB
	} else {
		result.LogMaxSizeMB = defaults.LogMaxSizeMB
	}

	// LogMaxBackups: use loaded if non-zero
	if loaded.LogMaxBackups != 0 {
		result.LogMaxBackups = loaded.LogMaxBackups
	} else {
		result.LogMaxBackups = defaults.LogMaxBackups
	}

	// InactivityTimeoutMinutes: use loaded if non-zero
	if loaded.InactivityTimeoutMinutes != 0 {
		result.InactivityTimeoutMinutes = loaded.InactivityTimeoutMinutes
	} else {
		result.InactivityTimeoutMinutes = defaults.InactivityTimeoutMinutes
	}

	return result
}

// ValidFormats lists the valid values for output format
var ValidFormats = []string{"yaml", "json"}

// IsValidFormat checks if the given format value is valid
func IsValidFormat(format string) bool {
	for _, valid := range ValidFormats {
		if format == valid {
			return true
		}
	}
	return false
}
