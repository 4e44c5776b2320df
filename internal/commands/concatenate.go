package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/repoanalyzer/internal/types"
	"github.com/temirov/repoanalyzer/internal/utils"
)

const (
	// errorWriteSectionFormat is used when a section cannot be written to the output.
	errorWriteSectionFormat = "writing section for %s: %w"

	warningSlowFile       = "file read exceeded the time limit, skipping it"
	noticeLimitReached    = "reached maximum character limit"
	debugSelfInclusion    = "excluding the output file from concatenation"
	debugFileConcatenated = "concatenated file"
)

// ConcatenationOptions configures Concatenate.
type ConcatenationOptions struct {
	// Files lists the files to concatenate in order.
	Files []string
	// MainFile, when present in Files, is written first and marked as the main file.
	MainFile string
	// MaxCharacters caps the characters written across all files; types.UnlimitedCharacters disables the cap.
	MaxCharacters int
	// OutputPath is removed from Files when it already exists.
	OutputPath string
	// ReadTimeout is the soft per-file read threshold. Zero selects types.DefaultReadTimeout.
	ReadTimeout time.Duration
	// Now returns the current time. Nil selects time.Now.
	Now    func() time.Time
	Logger *zap.Logger
}

// ConcatenationResult reports the outcome of Concatenate.
type ConcatenationResult struct {
	Characters   int
	FilesWritten int
	LimitReached bool
	SkippedSlow  []string
}

type concatenator struct {
	writer  io.Writer
	options ConcatenationOptions
	logger  *zap.Logger
	result  ConcatenationResult
}

// Concatenate writes a "--- path ---" delimited section for each file to writer, spending
// the character budget on the main file first. Processing stops as soon as the budget is
// exhausted. A file whose read takes longer than the read timeout is skipped and its
// characters are not counted.
func Concatenate(writer io.Writer, options ConcatenationOptions) (ConcatenationResult, error) {
	if options.ReadTimeout <= 0 {
		options.ReadTimeout = types.DefaultReadTimeout
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	state := &concatenator{writer: writer, options: options, logger: logger}

	remainingFiles := append([]string(nil), options.Files...)
	if options.OutputPath != "" && pathExists(options.OutputPath) {
		cleanOutputPath := filepath.Clean(options.OutputPath)
		if utils.ContainsString(remainingFiles, cleanOutputPath) {
			logger.Debug(debugSelfInclusion, zap.String("path", cleanOutputPath))
			remainingFiles = utils.RemoveString(remainingFiles, cleanOutputPath)
		}
	}

	if options.MainFile != "" && utils.ContainsString(remainingFiles, options.MainFile) {
		remainingFiles = utils.RemoveString(remainingFiles, options.MainFile)
		if writeError := state.writeFile(options.MainFile, true); writeError != nil {
			return state.result, writeError
		}
		if state.budgetExhausted() {
			return state.finish(), nil
		}
	}

	for _, filePath := range remainingFiles {
		if writeError := state.writeFile(filePath, false); writeError != nil {
			return state.result, writeError
		}
		if state.budgetExhausted() {
			return state.finish(), nil
		}
	}
	return state.finish(), nil
}

// writeFile reads filePath under the remaining budget and writes its section. The main
// file section is written even when empty; other sections only when they have content.
func (state *concatenator) writeFile(filePath string, isMainFile bool) error {
	countBeforeRead := state.result.Characters
	readStartedAt := state.options.Now()
	content, updatedCount, readError := ReadBounded(filePath, state.options.MaxCharacters, countBeforeRead)
	if readError != nil {
		return readError
	}
	elapsed := state.options.Now().Sub(readStartedAt)
	if elapsed > state.options.ReadTimeout {
		state.logger.Warn(warningSlowFile,
			zap.String("path", filePath),
			zap.Duration("elapsed", elapsed),
			zap.Duration("limit", state.options.ReadTimeout),
		)
		state.result.SkippedSlow = append(state.result.SkippedSlow, filePath)
		return nil
	}
	state.result.Characters = updatedCount

	headerFormat := types.SectionHeaderFormat
	if isMainFile {
		headerFormat = types.MainSectionHeaderFormat
	} else if content == "" {
		return nil
	}
	if _, writeError := fmt.Fprintf(state.writer, headerFormat, filePath); writeError != nil {
		return fmt.Errorf(errorWriteSectionFormat, filePath, writeError)
	}
	if _, writeError := io.WriteString(state.writer, content); writeError != nil {
		return fmt.Errorf(errorWriteSectionFormat, filePath, writeError)
	}
	state.result.FilesWritten++
	state.logger.Debug(debugFileConcatenated, zap.String("path", filePath), zap.Int("characters", updatedCount-countBeforeRead))
	return nil
}

func (state *concatenator) budgetExhausted() bool {
	return state.options.MaxCharacters > types.UnlimitedCharacters && state.result.Characters >= state.options.MaxCharacters
}

func (state *concatenator) finish() ConcatenationResult {
	if state.budgetExhausted() {
		state.result.LimitReached = true
		state.logger.Info(noticeLimitReached, zap.Int("max_chars", state.options.MaxCharacters))
	}
	return state.result
}

func pathExists(path string) bool {
	_, statError := os.Stat(path)
	return statError == nil
}
