package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"github.com/temirov/repoanalyzer/internal/utils"
)

const (
	// errorWalkDirectoryFormat is used when the selection walk fails.
	errorWalkDirectoryFormat = "walking directory %s: %w"

	debugIgnoredFile = "ignoring file"
)

// SelectionOptions configures SelectFiles.
type SelectionOptions struct {
	Root            string
	IncludePatterns []string
	IgnorePatterns  []string
	IncludeHidden   bool
	ValidExtensions map[string]struct{}
	Logger          *zap.Logger
}

// SelectFiles walks Root and returns the files to concatenate.
//
// The walk is top-down: every directory contributes its own files, in name order, before
// any file of its subdirectories, which are then visited in name order. Symbolic links to
// directories are not followed.
//
// Hidden names are filtered per file, so hidden directories are still walked. A file is
// dropped when its walked path matches any ignore pattern; otherwise it qualifies when the
// include list is empty or one of its patterns matches, and its extension is allowed.
//
// Without include patterns the qualifying files are returned in walk order. With include
// patterns, every pattern in turn appends the qualifying files it matches, in walk order,
// so a file matching several patterns appears several times; the combined list is then
// reversed.
func SelectFiles(options SelectionOptions) ([]string, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	walker := &selectionWalker{
		options:        options,
		logger:         logger,
		ignoreMatcher:  utils.NewPathMatcher(options.IgnorePatterns, logger),
		includeMatcher: utils.NewPathMatcher(options.IncludePatterns, logger),
	}
	if walkError := walker.walkDirectory(options.Root); walkError != nil {
		return nil, fmt.Errorf(errorWalkDirectoryFormat, options.Root, walkError)
	}

	if walker.includeMatcher.Len() == 0 {
		return walker.qualifyingFiles, nil
	}
	return orderByIncludePatterns(walker.qualifyingFiles, walker.includeMatcher), nil
}

type selectionWalker struct {
	options         SelectionOptions
	logger          *zap.Logger
	ignoreMatcher   *utils.PathMatcher
	includeMatcher  *utils.PathMatcher
	qualifyingFiles []string
}

// walkDirectory records the qualifying files of directoryPath, then descends into its
// subdirectories.
func (walker *selectionWalker) walkDirectory(directoryPath string) error {
	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		return readDirectoryError
	}

	var subdirectoryPaths []string
	for _, directoryEntry := range directoryEntries {
		entryPath := filepath.Join(directoryPath, directoryEntry.Name())
		if directoryEntry.IsDir() {
			subdirectoryPaths = append(subdirectoryPaths, entryPath)
			continue
		}
		if directoryEntry.Type()&fs.ModeSymlink != 0 && isDirectory(entryPath) {
			continue
		}
		if walker.qualifies(entryPath, directoryEntry.Name()) {
			walker.qualifyingFiles = append(walker.qualifyingFiles, entryPath)
		}
	}

	for _, subdirectoryPath := range subdirectoryPaths {
		if walkError := walker.walkDirectory(subdirectoryPath); walkError != nil {
			return walkError
		}
	}
	return nil
}

func (walker *selectionWalker) qualifies(filePath string, fileName string) bool {
	if !walker.options.IncludeHidden && utils.IsHiddenName(fileName) {
		return false
	}
	if walker.ignoreMatcher.MatchesAny(filePath) {
		walker.logger.Debug(debugIgnoredFile, zap.String("path", filePath))
		return false
	}
	if walker.includeMatcher.Len() > 0 && !walker.includeMatcher.MatchesAny(filePath) {
		return false
	}
	return utils.HasValidExtension(filePath, walker.options.ValidExtensions)
}

// orderByIncludePatterns groups files by include pattern, keeping duplicates, and reverses the result.
func orderByIncludePatterns(qualifyingFiles []string, includeMatcher *utils.PathMatcher) []string {
	var orderedFiles []string
	for patternIndex := 0; patternIndex < includeMatcher.Len(); patternIndex++ {
		for _, filePath := range qualifyingFiles {
			if includeMatcher.MatchesAt(patternIndex, filePath) {
				orderedFiles = append(orderedFiles, filePath)
			}
		}
	}
	slices.Reverse(orderedFiles)
	return orderedFiles
}
