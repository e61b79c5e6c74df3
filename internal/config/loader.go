package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/genoreport/internal/log"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".genoreport"

// DatasetConfig holds settings for a single dataset.
// Zero values mean "not set" and fall through to the next layer.
type DatasetConfig struct {
	// LocusFile is the locus metadata file of the dataset.
	LocusFile string `yaml:"locusFile,omitempty" toml:"locusFile,omitempty"`

	// Colors overrides the (border, fill) color pair.
	Colors []string `yaml:"colors,omitempty" toml:"colors,omitempty"`

	// Theme overrides the chart theme.
	Theme string `yaml:"theme,omitempty" toml:"theme,omitempty"`

	// Bins overrides the histogram bin count.
	Bins int `yaml:"bins,omitempty" toml:"bins,omitempty"`

	// IndToList overrides the lowest call-rate listing length.
	IndToList int `yaml:"indToList,omitempty" toml:"indToList,omitempty"`

	// SaveName overrides the base file name of saved charts.
	SaveName string `yaml:"saveName,omitempty" toml:"saveName,omitempty"`
}

// File represents the structure of the configuration file.
type File struct {
	// WorkDir is the default working directory for saved charts.
	WorkDir string `yaml:"workdir,omitempty" toml:"workdir,omitempty"`

	// Verbosity is the default report verbosity.
	Verbosity *int `yaml:"verbosity,omitempty" toml:"verbosity,omitempty"`

	// Display toggles chart display. Unset keeps the built-in default.
	Display *bool `yaml:"display,omitempty" toml:"display,omitempty"`

	// SaveType is the default format tag for saved charts.
	SaveType string `yaml:"saveType,omitempty" toml:"saveType,omitempty"`

	// BatchSize is the number of datasets reported concurrently.
	BatchSize int `yaml:"batchSize,omitempty" toml:"batchSize,omitempty"`

	// Archive toggles the report archive. Unset keeps the built-in default.
	Archive *bool `yaml:"archive,omitempty" toml:"archive,omitempty"`

	// Defaults contains settings applied to every dataset unless
	// overridden in Datasets.
	Defaults DatasetConfig `yaml:"defaults,omitempty" toml:"defaults,omitempty"`

	// Datasets maps dataset names (genotype file stems) to their settings.
	Datasets map[string]DatasetConfig `yaml:"datasets,omitempty" toml:"datasets,omitempty"`
}

// DatasetConfig returns the configuration for a specific dataset.
// It merges the dataset-specific configuration with defaults.
func (cf *File) DatasetConfig(name string) DatasetConfig {
	result := cf.Defaults
	result.Colors = append([]string(nil), cf.Defaults.Colors...)

	if dc, ok := cf.Datasets[name]; ok {
		if dc.LocusFile != "" {
			result.LocusFile = dc.LocusFile
		}
		if len(dc.Colors) > 0 {
			result.Colors = append([]string(nil), dc.Colors...)
		}
		if dc.Theme != "" {
			result.Theme = dc.Theme
		}
		if dc.Bins != 0 {
			result.Bins = dc.Bins
		}
		if dc.IndToList != 0 {
			result.IndToList = dc.IndToList
		}
		if dc.SaveName != "" {
			result.SaveName = dc.SaveName
		}
	}

	return result
}

// LoadConfigFile loads a configuration file. Files ending in .toml are
// decoded as TOML, everything else as YAML.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, &cf); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Datasets == nil {
		cf.Datasets = make(map[string]DatasetConfig)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .genoreport in the current directory
// 3. Look for config.yaml, then config.toml, in the XDG config directory
// 4. Look for .genoreport in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates,
		filepath.Join(XDGConfigDir(), "config.yaml"),
		filepath.Join(XDGConfigDir(), "config.toml"),
	)
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// ApplyFile copies the global settings of the configuration file into c
// and keeps the file for per-dataset lookups. Unset entries leave c unchanged.
func (c *Config) ApplyFile(cf *File) {
	if cf == nil {
		return
	}
	c.Overrides = cf

	if cf.WorkDir != "" {
		c.WorkDir = cf.WorkDir
	}
	if cf.Verbosity != nil {
		c.Verbosity = log.Verbosity(*cf.Verbosity)
	}
	if cf.Display != nil {
		c.Plot.Display = *cf.Display
	}
	if cf.SaveType != "" {
		c.Save.Type = cf.SaveType
	}
	if cf.BatchSize != 0 {
		c.BatchSize = cf.BatchSize
	}
	if cf.Archive != nil {
		c.Archive = *cf.Archive
	}
}

// ApplyEnv applies environment overrides using lookup, normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if dir, ok := lookup(EnvWorkDir); ok && dir != "" {
		c.WorkDir = dir
	}
}
