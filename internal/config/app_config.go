package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/repoanalyzer/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	HomeDirectory    string
}

// ApplicationConfiguration holds command defaults read from configuration files.
type ApplicationConfiguration struct {
	Analyze AnalyzeConfiguration `mapstructure:"analyze"`
}

// AnalyzeConfiguration defines defaults for the analyze command. Nil pointers and empty
// strings mean "not configured".
type AnalyzeConfiguration struct {
	TreeDepth     *int               `mapstructure:"tree_depth"`
	MaxItems      *int               `mapstructure:"max_items"`
	MaxChars      *int               `mapstructure:"max_chars"`
	IncludeHidden *bool              `mapstructure:"include_hidden"`
	IncludeFile   string             `mapstructure:"include_file"`
	IgnoreFile    string             `mapstructure:"ignore_file"`
	Exclude       []string           `mapstructure:"exclude"`
	Tokens        TokenConfiguration `mapstructure:"tokens"`
	Clipboard     *bool              `mapstructure:"clipboard"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// LoadApplicationConfiguration loads the global configuration and overlays the local one.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		if resolvedHome, err := os.UserHomeDir(); err == nil {
			homeDirectory = resolvedHome
		}
	}
	if homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	localConfig, loadErr := loadConfigurationFromPath(localPath)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	merged.Analyze.Exclude = utils.DeduplicatePatterns(merged.Analyze.Exclude)
	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.ConfigFileName)
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath
	}
	return filepath.Join(workingDirectory, explicitPath)
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Analyze = result.Analyze.merge(override.Analyze)
	return result
}

func (config AnalyzeConfiguration) merge(override AnalyzeConfiguration) AnalyzeConfiguration {
	result := config
	if override.TreeDepth != nil {
		result.TreeDepth = cloneInt(override.TreeDepth)
	}
	if override.MaxItems != nil {
		result.MaxItems = cloneInt(override.MaxItems)
	}
	if override.MaxChars != nil {
		result.MaxChars = cloneInt(override.MaxChars)
	}
	if override.IncludeHidden != nil {
		result.IncludeHidden = cloneBool(override.IncludeHidden)
	}
	if override.IncludeFile != "" {
		result.IncludeFile = override.IncludeFile
	}
	if override.IgnoreFile != "" {
		result.IgnoreFile = override.IgnoreFile
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, override.Exclude...)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
