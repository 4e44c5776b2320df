package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repoanalyzer/internal/commands"
	"github.com/temirov/repoanalyzer/internal/config"
	"github.com/temirov/repoanalyzer/internal/output"
	"github.com/temirov/repoanalyzer/internal/services/clipboard"
	"github.com/temirov/repoanalyzer/internal/tokenizer"
	"github.com/temirov/repoanalyzer/internal/types"
	"github.com/temirov/repoanalyzer/internal/utils"
)

const (
	// errorPathMissingFormat reports a missing directory.
	errorPathMissingFormat = "directory '%s' does not exist"
	// errorNotDirectoryFormat reports a path that is not a directory.
	errorNotDirectoryFormat = "'%s' is not a directory"
	// errorStatFormat reports failure to retrieve file statistics.
	errorStatFormat = "stat failed for '%s': %w"
	// errorAbsolutePathFormat reports failure to resolve an absolute path.
	errorAbsolutePathFormat     = "abs failed for '%s': %w"
	errorMinimumValueFormat     = "--%s must be at least %d, got %d"
	errorCreateOutputFormat     = "creating summary file %s: %w"
	errorFlushOutputFormat      = "writing summary file %s: %w"
	errorCloseOutputFormat      = "closing summary file %s: %w"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"

	infoAnalyzing           = "analyzing directory"
	infoSummaryWritten      = "summary written"
	infoTokensEstimated     = "estimated summary tokens"
	infoClipboardCopied     = "copied summary to clipboard"
	warningNoFilesSelected  = "no files found matching the criteria"
	warningMainFileMissing  = "main file is not among the selected files"
	warningTokensNotCounted = "summary is not valid UTF-8, token estimate skipped"
	warningClipboardFailed  = "failed to copy summary to clipboard"
	debugPatternsResolved   = "resolved patterns"

	minimumTreeDepth = 1
	minimumMaxItems  = 1
)

// analyzeSettings is the fully resolved configuration of one analysis run.
type analyzeSettings struct {
	directory         types.ValidatedDirectory
	mainFile          string
	maxCharacters     int
	treeDepth         int
	maxItems          int
	includeHidden     bool
	includeFile       string
	ignoreFile        string
	exclusionPatterns []string
	tokensEnabled     bool
	tokenModel        string
	clipboardEnabled  bool
	outputPath        string
}

func runAnalyzeCommand(command *cobra.Command, directoryArgument string, flags analyzeFlags, deps dependencies) error {
	workingDirectory := deps.workingDirectory
	if workingDirectory == utils.EmptyString {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	applicationConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: flags.configPath,
		HomeDirectory:    deps.homeDirectory,
	})
	if loadError != nil {
		return loadError
	}

	directory, directoryError := validateDirectory(directoryArgument)
	if directoryError != nil {
		return directoryError
	}

	settings, settingsError := resolveSettings(command, flags, applicationConfiguration.Analyze, directory)
	if settingsError != nil {
		return settingsError
	}

	summary, analysisError := runAnalysis(settings, deps)
	if analysisError != nil {
		return analysisError
	}
	fmt.Fprintln(command.OutOrStdout(), summary.OutputPath)
	return nil
}

// validateDirectory checks that directoryPath names an existing directory.
func validateDirectory(directoryPath string) (types.ValidatedDirectory, error) {
	cleanPath := filepath.Clean(directoryPath)
	info, statError := os.Stat(cleanPath)
	if statError != nil {
		if os.IsNotExist(statError) {
			return types.ValidatedDirectory{}, fmt.Errorf(errorPathMissingFormat, directoryPath)
		}
		return types.ValidatedDirectory{}, fmt.Errorf(errorStatFormat, directoryPath, statError)
	}
	if !info.IsDir() {
		return types.ValidatedDirectory{}, fmt.Errorf(errorNotDirectoryFormat, directoryPath)
	}
	absolutePath, absolutePathError := filepath.Abs(cleanPath)
	if absolutePathError != nil {
		return types.ValidatedDirectory{}, fmt.Errorf(errorAbsolutePathFormat, directoryPath, absolutePathError)
	}
	return types.ValidatedDirectory{
		Path:         cleanPath,
		AbsolutePath: absolutePath,
		ProjectName:  filepath.Base(absolutePath),
	}, nil
}

// resolveSettings applies the precedence command line flag, then configuration file, then
// built-in default. Flag defaults equal the built-in defaults, so an unchanged flag value
// doubles as the fallback.
func resolveSettings(command *cobra.Command, flags analyzeFlags, configuration config.AnalyzeConfiguration, directory types.ValidatedDirectory) (analyzeSettings, error) {
	flagSet := command.Flags()
	settings := analyzeSettings{
		directory:        directory,
		maxCharacters:    resolveInt(flagSet.Changed(maxCharsFlagName), flags.maxChars, configuration.MaxChars),
		treeDepth:        resolveInt(flagSet.Changed(treeDepthFlagName), flags.treeDepth, configuration.TreeDepth),
		maxItems:         resolveInt(flagSet.Changed(maxItemsFlagName), flags.maxItems, configuration.MaxItems),
		includeHidden:    resolveBool(flagSet.Changed(includeHiddenFlagName), flags.includeHidden, configuration.IncludeHidden),
		includeFile:      resolveString(flagSet.Changed(includeFileFlagName), flags.includeFile, configuration.IncludeFile),
		ignoreFile:       resolveString(flagSet.Changed(ignoreFileFlagName), flags.ignoreFile, configuration.IgnoreFile),
		tokensEnabled:    resolveBool(flagSet.Changed(tokensFlagName), flags.tokens, configuration.Tokens.Enabled),
		tokenModel:       resolveString(flagSet.Changed(modelFlagName), flags.model, configuration.Tokens.Model),
		clipboardEnabled: resolveBool(flagSet.Changed(clipboardFlagName), flags.clipboard, configuration.Clipboard),
		outputPath:       filepath.Join(directory.Path, directory.ProjectName+types.SummaryFileSuffix),
	}
	settings.exclusionPatterns = utils.DeduplicatePatterns(append(append([]string{}, configuration.Exclude...), flags.exclusionPatterns...))

	if settings.treeDepth < minimumTreeDepth {
		return analyzeSettings{}, fmt.Errorf(errorMinimumValueFormat, treeDepthFlagName, minimumTreeDepth, settings.treeDepth)
	}
	if settings.maxItems < minimumMaxItems {
		return analyzeSettings{}, fmt.Errorf(errorMinimumValueFormat, maxItemsFlagName, minimumMaxItems, settings.maxItems)
	}
	settings.mainFile = resolveMainFile(flags.mainFile, directory)
	return settings, nil
}

func resolveInt(flagChanged bool, flagValue int, configured *int) int {
	if flagChanged || configured == nil {
		return flagValue
	}
	return *configured
}

func resolveBool(flagChanged bool, flagValue bool, configured *bool) bool {
	if flagChanged || configured == nil {
		return flagValue
	}
	return *configured
}

func resolveString(flagChanged bool, flagValue string, configured string) string {
	if flagChanged || configured == utils.EmptyString {
		return flagValue
	}
	return configured
}

// resolveMainFile expresses mainFile the way the selection walk spells paths under
// directory, so the two compare equal. A relative main file that does not exist relative
// to the working directory is taken relative to the analyzed directory.
func resolveMainFile(mainFile string, directory types.ValidatedDirectory) string {
	if mainFile == utils.EmptyString {
		return utils.EmptyString
	}
	candidate := filepath.Clean(mainFile)
	if !filepath.IsAbs(candidate) {
		if _, statError := os.Stat(candidate); statError != nil {
			candidate = filepath.Join(directory.Path, candidate)
		}
	}
	absoluteCandidate, absolutePathError := filepath.Abs(candidate)
	if absolutePathError != nil {
		return candidate
	}
	relativePath, relativeError := filepath.Rel(directory.AbsolutePath, absoluteCandidate)
	if relativeError != nil || relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
		return candidate
	}
	return filepath.Join(directory.Path, relativePath)
}

// runAnalysis writes the summary artifact described by settings and runs the optional
// token estimate and clipboard copy.
func runAnalysis(settings analyzeSettings, deps dependencies) (types.AnalysisSummary, error) {
	logger := deps.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info(infoAnalyzing, zap.String("directory", settings.directory.Path))

	includePatterns, includeError := config.LoadPatternFileOrWarn(settings.includeFile, logger)
	if includeError != nil {
		return types.AnalysisSummary{}, includeError
	}
	ignorePatterns, ignoreError := config.LoadPatternFileOrWarn(settings.ignoreFile, logger)
	if ignoreError != nil {
		return types.AnalysisSummary{}, ignoreError
	}
	ignorePatterns = utils.DeduplicatePatterns(append(ignorePatterns, settings.exclusionPatterns...))
	logger.Debug(debugPatternsResolved, zap.Strings("include", includePatterns), zap.Strings("ignore", ignorePatterns))

	treeLines, treeError := commands.RenderTree(settings.directory.Path, settings.treeDepth, settings.maxItems, settings.includeHidden)
	if treeError != nil {
		return types.AnalysisSummary{}, treeError
	}

	result, writeError := writeSummaryFile(settings, includePatterns, ignorePatterns, treeLines, deps, logger)
	if writeError != nil {
		return types.AnalysisSummary{}, writeError
	}

	summary := types.AnalysisSummary{
		OutputPath:   settings.outputPath,
		Characters:   result.Characters,
		FilesWritten: result.FilesWritten,
		LimitReached: result.LimitReached,
	}
	if info, statError := os.Stat(settings.outputPath); statError == nil {
		summary.SizeBytes = info.Size()
	}
	logger.Info(infoSummaryWritten,
		zap.String("path", summary.OutputPath),
		zap.Int("characters", summary.Characters),
		zap.Int("files", summary.FilesWritten),
		zap.String("size", utils.FormatFileSize(summary.SizeBytes)),
	)

	if settings.tokensEnabled {
		if tokenError := estimateTokens(&summary, settings.tokenModel, deps, logger); tokenError != nil {
			return types.AnalysisSummary{}, tokenError
		}
	}

	if settings.clipboardEnabled {
		copier := deps.copier
		if copier == nil {
			copier = clipboard.NewService()
		}
		if copyError := clipboard.CopyArtifact(copier, summary.OutputPath); copyError != nil {
			logger.Warn(warningClipboardFailed, zap.Error(copyError))
		} else {
			logger.Info(infoClipboardCopied)
		}
	}
	return summary, nil
}

func writeSummaryFile(
	settings analyzeSettings,
	includePatterns []string,
	ignorePatterns []string,
	treeLines []string,
	deps dependencies,
	logger *zap.Logger,
) (result commands.ConcatenationResult, err error) {
	outputFile, createError := os.Create(settings.outputPath)
	if createError != nil {
		return commands.ConcatenationResult{}, fmt.Errorf(errorCreateOutputFormat, settings.outputPath, createError)
	}
	defer func() {
		if closeError := outputFile.Close(); closeError != nil && err == nil {
			err = fmt.Errorf(errorCloseOutputFormat, settings.outputPath, closeError)
		}
	}()
	writer := bufio.NewWriter(outputFile)

	header := output.RenderHeader(settings.directory.ProjectName, includePatterns, ignorePatterns)
	if preambleError := output.WritePreamble(writer, header, treeLines); preambleError != nil {
		return commands.ConcatenationResult{}, preambleError
	}

	selectedFiles, selectionError := commands.SelectFiles(commands.SelectionOptions{
		Root:            settings.directory.Path,
		IncludePatterns: includePatterns,
		IgnorePatterns:  ignorePatterns,
		IncludeHidden:   settings.includeHidden,
		ValidExtensions: utils.ValidExtensions(),
		Logger:          logger,
	})
	if selectionError != nil {
		return commands.ConcatenationResult{}, selectionError
	}
	if len(selectedFiles) == 0 {
		logger.Warn(warningNoFilesSelected, zap.String("directory", settings.directory.Path))
	}
	if settings.mainFile != utils.EmptyString && !utils.ContainsString(selectedFiles, settings.mainFile) {
		logger.Warn(warningMainFileMissing, zap.String("main_file", settings.mainFile))
	}

	result, concatenationError := commands.Concatenate(writer, commands.ConcatenationOptions{
		Files:         selectedFiles,
		MainFile:      settings.mainFile,
		MaxCharacters: settings.maxCharacters,
		OutputPath:    settings.outputPath,
		Now:           deps.now,
		Logger:        logger,
	})
	if concatenationError != nil {
		return commands.ConcatenationResult{}, concatenationError
	}
	if flushError := writer.Flush(); flushError != nil {
		return commands.ConcatenationResult{}, fmt.Errorf(errorFlushOutputFormat, settings.outputPath, flushError)
	}
	return result, nil
}

func estimateTokens(summary *types.AnalysisSummary, model string, deps dependencies, logger *zap.Logger) error {
	newCounter := deps.newCounter
	if newCounter == nil {
		newCounter = tokenizer.NewCounter
	}
	counter, resolvedModel, counterError := newCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		return counterError
	}
	countResult, countError := tokenizer.CountFile(counter, summary.OutputPath)
	if countError != nil {
		return countError
	}
	if !countResult.Counted {
		logger.Warn(warningTokensNotCounted, zap.String("path", summary.OutputPath))
		return nil
	}
	summary.Tokens = countResult.Tokens
	summary.Model = resolvedModel
	logger.Info(infoTokensEstimated, zap.Int("tokens", summary.Tokens), zap.String("model", summary.Model))
	return nil
}
