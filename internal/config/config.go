// Package config loads pattern files and application configuration.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// ErrNoPatterns reports a pattern file that is missing or holds no patterns.
var ErrNoPatterns = errors.New("no patterns found")

const (
	errorNoPatternsFormat   = "%s: %w"
	errorOpenPatternsFormat = "opening pattern file %s: %w"
	errorScanPatternsFormat = "reading pattern file %s: %w"
	warningNoPatterns       = "pattern file missing or empty, using no patterns"
)

// LoadPatternFile reads newline-delimited patterns from patternFilePath in file order.
// Lines are trimmed and blank lines are skipped. A missing file, or one holding only blank
// lines, yields an empty slice together with an error wrapping ErrNoPatterns.
//
// #nosec G304
func LoadPatternFile(patternFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(patternFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return []string{}, fmt.Errorf(errorNoPatternsFormat, patternFilePath, ErrNoPatterns)
		}
		return nil, fmt.Errorf(errorOpenPatternsFormat, patternFilePath, openFileError)
	}
	defer fileHandle.Close()

	patterns := []string{}
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" {
			continue
		}
		patterns = append(patterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf(errorScanPatternsFormat, patternFilePath, scanError)
	}
	if len(patterns) == 0 {
		return patterns, fmt.Errorf(errorNoPatternsFormat, patternFilePath, ErrNoPatterns)
	}
	return patterns, nil
}

// LoadPatternFileOrWarn loads patternFilePath and degrades a missing or empty file to an
// empty pattern list, logging a warning. Any other error is returned.
func LoadPatternFileOrWarn(patternFilePath string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	patterns, loadError := LoadPatternFile(patternFilePath)
	if loadError != nil {
		if errors.Is(loadError, ErrNoPatterns) {
			logger.Warn(warningNoPatterns, zap.String("path", patternFilePath))
			return []string{}, nil
		}
		return nil, loadError
	}
	return patterns, nil
}
