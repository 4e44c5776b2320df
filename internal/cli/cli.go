// Package cli provides the repo-analyzer command line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repoanalyzer/internal/services/clipboard"
	"github.com/temirov/repoanalyzer/internal/tokenizer"
	"github.com/temirov/repoanalyzer/internal/types"
	"github.com/temirov/repoanalyzer/internal/utils"
)

const (
	rootUse              = "repo-analyzer <directory>"
	rootShortDescription = "summarize a repository into a single text file"
	rootLongDescription  = `repo-analyzer walks a directory and writes <directory>/<name>_summary.txt.
The summary holds an instructional header, a depth-limited directory tree and the
concatenated contents of the selected files. Include and ignore patterns are read from
pattern files holding one glob per line; -e adds further ignore patterns.
Use --main-file to place the primary runner first and --max-chars to cap the concatenated text.`
	rootUsageExample = `  # Summarize a project with the default pattern files
  repo-analyzer ./tool

  # Put the main runner first and cap the concatenated text
  repo-analyzer ./tool --main-file ./tool/main.py --max-chars 200000

  # Ignore test directories, estimate tokens and copy the result
  repo-analyzer ./tool -e '*/tests/*' --tokens --clipboard`

	mainFileFlagName      = "main-file"
	maxCharsFlagName      = "max-chars"
	treeDepthFlagName     = "tree-depth"
	includeHiddenFlagName = "include-hidden"
	maxItemsFlagName      = "max-items"
	includeFileFlagName   = "include-file"
	ignoreFileFlagName    = "ignore-file"
	exclusionFlagName     = "exclude"
	exclusionShorthand    = "e"
	tokensFlagName        = "tokens"
	modelFlagName         = "model"
	clipboardFlagName     = "clipboard"
	configFlagName        = "config"
	verboseFlagName       = "verbose"
	versionFlagName       = "version"

	mainFileFlagDescription      = "file written first and marked as the main file"
	maxCharsFlagDescription      = "maximum characters of concatenated file content (0 means unlimited)"
	treeDepthFlagDescription     = "maximum depth of the directory tree"
	includeHiddenFlagDescription = "include hidden files and directories"
	maxItemsFlagDescription      = "maximum entries listed per directory in the tree"
	includeFileFlagDescription   = "file listing include patterns, one per line"
	ignoreFileFlagDescription    = "file listing ignore patterns, one per line"
	exclusionFlagDescription     = "additional ignore pattern (repeatable)"
	tokensFlagDescription        = "estimate the token count of the summary"
	modelFlagDescription         = "tokenizer model used for the estimate"
	clipboardFlagDescription     = "copy the summary to the system clipboard"
	configFlagDescription        = "path to a configuration file overriding ./" + utils.ConfigFileName
	verboseFlagDescription       = "log debug messages"
	versionFlagDescription       = "display application version"

	versionTemplate = "repo-analyzer version: %s\n"

	errorDirectoryArgumentRequired = "a directory argument is required"
)

// analyzeFlags holds the raw command line values of the root command.
type analyzeFlags struct {
	mainFile          string
	maxChars          int
	treeDepth         int
	includeHidden     bool
	maxItems          int
	includeFile       string
	ignoreFile        string
	exclusionPatterns []string
	tokens            bool
	model             string
	clipboard         bool
	configPath        string
	verbose           bool
	showVersion       bool
}

// dependencies are the collaborators of a command invocation. Zero values select the
// production implementations.
type dependencies struct {
	logger           *zap.Logger
	copier           clipboard.Copier
	newCounter       func(tokenizer.Config) (tokenizer.Counter, string, error)
	workingDirectory string
	homeDirectory    string
	now              func() time.Time
}

// Execute runs the repo-analyzer application with the process arguments.
func Execute() error {
	rootCommand := newRootCommand(dependencies{})
	rootCommand.SetArgs(attachSwitchValues(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

func newRootCommand(deps dependencies) *cobra.Command {
	var flags analyzeFlags

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if deps.logger != nil {
				return nil
			}
			logger, loggerError := utils.NewApplicationLogger(flags.verbose)
			if loggerError != nil {
				return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
			}
			deps.logger = logger
			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			if flags.showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return nil
			}
			if len(arguments) == 0 {
				return errors.New(errorDirectoryArgumentRequired)
			}
			return runAnalyzeCommand(command, arguments[0], flags, deps)
		},
	}

	flagSet := rootCommand.Flags()
	flagSet.StringVar(&flags.mainFile, mainFileFlagName, utils.EmptyString, mainFileFlagDescription)
	flagSet.IntVar(&flags.maxChars, maxCharsFlagName, types.UnlimitedCharacters, maxCharsFlagDescription)
	flagSet.IntVar(&flags.treeDepth, treeDepthFlagName, types.DefaultTreeDepth, treeDepthFlagDescription)
	registerSwitchFlag(flagSet, &flags.includeHidden, includeHiddenFlagName, includeHiddenFlagDescription)
	flagSet.IntVar(&flags.maxItems, maxItemsFlagName, types.DefaultMaxItems, maxItemsFlagDescription)
	flagSet.StringVar(&flags.includeFile, includeFileFlagName, types.DefaultIncludeFileName, includeFileFlagDescription)
	flagSet.StringVar(&flags.ignoreFile, ignoreFileFlagName, types.DefaultIgnoreFileName, ignoreFileFlagDescription)
	flagSet.StringArrayVarP(&flags.exclusionPatterns, exclusionFlagName, exclusionShorthand, nil, exclusionFlagDescription)
	registerSwitchFlag(flagSet, &flags.tokens, tokensFlagName, tokensFlagDescription)
	flagSet.StringVar(&flags.model, modelFlagName, types.DefaultTokenizerModel, modelFlagDescription)
	registerSwitchFlag(flagSet, &flags.clipboard, clipboardFlagName, clipboardFlagDescription)
	flagSet.StringVar(&flags.configPath, configFlagName, utils.EmptyString, configFlagDescription)
	flagSet.BoolVar(&flags.showVersion, versionFlagName, false, versionFlagDescription)
	registerSwitchFlag(rootCommand.PersistentFlags(), &flags.verbose, verboseFlagName, verboseFlagDescription)

	rootCommand.AddCommand(newInitCommand(&deps))
	return rootCommand
}
