// Package commands contains the file-selection, tree-rendering and concatenation engine.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temirov/repoanalyzer/internal/types"
	"github.com/temirov/repoanalyzer/internal/utils"
)

const (
	// errorReadDirectoryFormat is used when a directory cannot be read.
	errorReadDirectoryFormat = "reading directory %s: %w"
	// errorBuildTreeFormat is used when rendering the tree fails.
	errorBuildTreeFormat = "building tree for %s: %w"
)

// RenderTree lists directory up to maxDepth levels with at most maxItemsPerDirectory entries
// per directory and returns the indentation-formatted display lines.
func RenderTree(directory string, maxDepth int, maxItemsPerDirectory int, includeHidden bool) ([]string, error) {
	treeBuilder := &TreeBuilder{
		MaxDepth:             maxDepth,
		MaxItemsPerDirectory: maxItemsPerDirectory,
		IncludeHidden:        includeHidden,
	}
	return treeBuilder.Render(directory)
}

// Render returns the display lines of the tree rooted at directory. A directory that
// cannot be read anywhere in the tree aborts rendering.
func (treeBuilder *TreeBuilder) Render(directory string) ([]string, error) {
	lines, renderError := treeBuilder.renderLevel(directory, 0)
	if renderError != nil {
		return nil, fmt.Errorf(errorBuildTreeFormat, directory, renderError)
	}
	return lines, nil
}

// renderLevel renders the entries of currentDirectoryPath at depth and recurses into subdirectories.
func (treeBuilder *TreeBuilder) renderLevel(currentDirectoryPath string, depth int) ([]string, error) {
	directoryEntries, readDirectoryError := os.ReadDir(currentDirectoryPath)
	if readDirectoryError != nil {
		return nil, fmt.Errorf(errorReadDirectoryFormat, currentDirectoryPath, readDirectoryError)
	}

	entryNames := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		if !treeBuilder.IncludeHidden && utils.IsHiddenName(directoryEntry.Name()) {
			continue
		}
		entryNames = append(entryNames, directoryEntry.Name())
	}
	sort.Strings(entryNames)
	if len(entryNames) > treeBuilder.MaxItemsPerDirectory {
		entryNames = append(entryNames[:treeBuilder.MaxItemsPerDirectory], types.TreeTruncationSentinel)
	}

	indentation := strings.Repeat(types.TreeIndentUnit, depth)
	var lines []string
	for _, entryName := range entryNames {
		childPath := filepath.Join(currentDirectoryPath, entryName)
		if entryName == types.TreeTruncationSentinel || !isDirectory(childPath) {
			lines = append(lines, indentation+types.TreeBranchMarker+entryName)
			continue
		}
		lines = append(lines, indentation+types.TreeBranchMarker+entryName+"/")
		if depth < treeBuilder.MaxDepth-1 {
			childLines, childError := treeBuilder.renderLevel(childPath, depth+1)
			if childError != nil {
				return nil, childError
			}
			lines = append(lines, childLines...)
		}
	}
	return lines, nil
}

// isDirectory reports whether path resolves to a directory, following symbolic links.
func isDirectory(path string) bool {
	fileInfo, statError := os.Stat(path)
	return statError == nil && fileInfo.IsDir()
}
