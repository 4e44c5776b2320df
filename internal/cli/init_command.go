package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repoanalyzer/internal/config"
)

const (
	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write a configuration file holding the default analysis settings.
The file is written to ./config.yaml, or to ~/.repoanalyzer/config.yaml with --global.
Values in the file apply whenever the matching flag is not given on the command line.`
	initUsageExample = `  # Create ./config.yaml
  repo-analyzer init

  # Replace the global configuration
  repo-analyzer init --global --force`

	globalFlagName        = "global"
	forceFlagName         = "force"
	globalFlagDescription = "write the global configuration under the home directory"
	forceFlagDescription  = "overwrite an existing configuration file"

	infoConfigurationWritten = "configuration written"
)

func newInitCommand(deps *dependencies) *cobra.Command {
	var globalTarget bool
	var forceOverwrite bool

	initCommand := &cobra.Command{
		Use:     initUse,
		Short:   initShortDescription,
		Long:    initLongDescription,
		Example: initUsageExample,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if globalTarget {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            forceOverwrite,
				WorkingDirectory: deps.workingDirectory,
				HomeDirectory:    deps.homeDirectory,
			})
			if initError != nil {
				return initError
			}
			if deps.logger != nil {
				deps.logger.Info(infoConfigurationWritten, zap.String("path", writtenPath))
			}
			fmt.Fprintln(command.OutOrStdout(), writtenPath)
			return nil
		},
	}
	registerSwitchFlag(initCommand.Flags(), &globalTarget, globalFlagName, globalFlagDescription)
	registerSwitchFlag(initCommand.Flags(), &forceOverwrite, forceFlagName, forceFlagDescription)
	return initCommand
}
