package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/repoanalyzer/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultConfigurationTemplate = `analyze:
  tree_depth: 10
  max_items: 50
  max_chars: 0
  include_hidden: false
  include_file: files_to_include.txt
  ignore_file: files_to_ignore.txt
  exclude: []
  tokens:
    enabled: false
    model: gpt-4o
  clipboard: false
`

	errorConfigurationExistsFormat    = "configuration file already exists at %s (use --force to overwrite)"
	errorInspectConfigurationFormat   = "inspect configuration path %s: %w"
	errorCreateConfigurationDirFormat = "create configuration directory %s: %w"
	errorWriteConfigurationFormat     = "write configuration to %s: %w"
	errorInitWorkingDirectoryFormat   = "determine working directory for configuration: %w"
	errorInitHomeDirectoryFormat      = "resolve home directory for configuration: %w"
	errorUnsupportedInitTargetFormat  = "unsupported init target %q"
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
	HomeDirectory    string
}

// InitializeConfiguration writes the default configuration to the requested target and
// returns the written path. An existing file is replaced only when Force is set.
func InitializeConfiguration(options InitOptions) (string, error) {
	destinationPath, resolveError := resolveInitDestination(options)
	if resolveError != nil {
		return "", resolveError
	}

	_, statError := os.Stat(destinationPath)
	switch {
	case statError == nil && !options.Force:
		return "", fmt.Errorf(errorConfigurationExistsFormat, destinationPath)
	case statError != nil && !os.IsNotExist(statError):
		return "", fmt.Errorf(errorInspectConfigurationFormat, destinationPath, statError)
	}

	if mkdirError := os.MkdirAll(filepath.Dir(destinationPath), 0o755); mkdirError != nil {
		return "", fmt.Errorf(errorCreateConfigurationDirFormat, filepath.Dir(destinationPath), mkdirError)
	}
	if writeError := os.WriteFile(destinationPath, []byte(defaultConfigurationTemplate), 0o600); writeError != nil {
		return "", fmt.Errorf(errorWriteConfigurationFormat, destinationPath, writeError)
	}
	return destinationPath, nil
}

func resolveInitDestination(options InitOptions) (string, error) {
	switch options.Target {
	case InitTargetLocal, "":
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			currentDirectory, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf(errorInitWorkingDirectoryFormat, err)
			}
			workingDirectory = currentDirectory
		}
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	case InitTargetGlobal:
		homeDirectory := options.HomeDirectory
		if homeDirectory == "" {
			resolvedHome, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf(errorInitHomeDirectoryFormat, err)
			}
			homeDirectory = resolvedHome
		}
		return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName), nil
	default:
		return "", fmt.Errorf(errorUnsupportedInitTargetFormat, options.Target)
	}
}
