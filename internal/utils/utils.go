// Package utils contains general helper functions used across the repo-analyzer tool.
package utils

import (
	"path/filepath"
	"strings"

	"github.com/temirov/repoanalyzer/internal/types"
)

// validExtensions lists the lower-cased extensions of files whose content may be concatenated.
var validExtensions = map[string]struct{}{
	".txt":   {},
	".md":    {},
	".rst":   {},
	".py":    {},
	".m":     {},
	".r":     {},
	".ipynb": {},
	".html":  {},
	".htm":   {},
	".css":   {},
	".js":    {},
	".jsx":   {},
	".ts":    {},
	".tsx":   {},
	".go":    {},
	".java":  {},
	".c":     {},
	".h":     {},
	".cpp":   {},
	".hpp":   {},
	".rs":    {},
	".rb":    {},
	".sh":    {},
	".sql":   {},
	".json":  {},
	".yaml":  {},
	".yml":   {},
	".toml":  {},
	".xml":   {},
	".csv":   {},
}

// ValidExtensions returns a copy of the extension allow-list.
func ValidExtensions() map[string]struct{} {
	extensions := make(map[string]struct{}, len(validExtensions))
	for extension := range validExtensions {
		extensions[extension] = struct{}{}
	}
	return extensions
}

// HasValidExtension reports whether the extension of filePath, compared case-insensitively,
// is a member of allowedExtensions.
func HasValidExtension(filePath string, allowedExtensions map[string]struct{}) bool {
	extension := strings.ToLower(filepath.Ext(filePath))
	if extension == "" {
		return false
	}
	_, allowed := allowedExtensions[extension]
	return allowed
}

// IsHiddenName reports whether a file or directory name is hidden.
func IsHiddenName(entryName string) bool {
	return strings.HasPrefix(entryName, types.HiddenNamePrefix)
}

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// ContainsString checks if a slice of strings contains a specific target string.
func ContainsString(stringSlice []string, targetString string) bool {
	for _, currentString := range stringSlice {
		if currentString == targetString {
			return true
		}
	}
	return false
}

// RemoveString returns stringSlice without any element equal to targetString.
func RemoveString(stringSlice []string, targetString string) []string {
	result := make([]string, 0, len(stringSlice))
	for _, currentString := range stringSlice {
		if currentString != targetString {
			result = append(result, currentString)
		}
	}
	return result
}
