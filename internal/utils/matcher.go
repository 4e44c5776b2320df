package utils

import (
	"strings"

	"github.com/gobwas/glob"
	"go.uber.org/zap"
)

const (
	characterClassOpen  = '['
	characterClassClose = ']'
	globEscape          = '\\'
)

// PathMatcher matches walked file paths against an ordered list of glob patterns.
// A "*" matches any run of characters, path separators included.
type PathMatcher struct {
	globs []glob.Glob
}

// NewPathMatcher compiles patterns in order. Braces and backslashes match themselves.
// A pattern that is not valid glob syntax is logged and compiled as a literal string.
func NewPathMatcher(patterns []string, logger *zap.Logger) *PathMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	matcher := &PathMatcher{globs: make([]glob.Glob, 0, len(patterns))}
	for _, pattern := range patterns {
		compiledGlob, compileError := glob.Compile(quoteLiteralCharacters(pattern))
		if compileError != nil {
			logger.Warn("invalid pattern, matching it literally",
				zap.String("pattern", pattern),
				zap.Error(compileError),
			)
			compiledGlob = glob.MustCompile(glob.QuoteMeta(pattern))
		}
		matcher.globs = append(matcher.globs, compiledGlob)
	}
	return matcher
}

// quoteLiteralCharacters escapes the characters that only glob.Compile treats as syntax:
// "{" and "}" open and close alternatives, "\" escapes. Character classes are left intact.
func quoteLiteralCharacters(pattern string) string {
	var quoted strings.Builder
	insideCharacterClass := false
	for _, character := range pattern {
		switch {
		case insideCharacterClass:
			if character == characterClassClose {
				insideCharacterClass = false
			}
		case character == characterClassOpen:
			insideCharacterClass = true
		case character == '{', character == '}', character == globEscape:
			quoted.WriteRune(globEscape)
		}
		quoted.WriteRune(character)
	}
	return quoted.String()
}

// Len returns the number of compiled patterns.
func (matcher *PathMatcher) Len() int {
	return len(matcher.globs)
}

// MatchesAny reports whether filePath matches at least one pattern.
func (matcher *PathMatcher) MatchesAny(filePath string) bool {
	for _, compiledGlob := range matcher.globs {
		if compiledGlob.Match(filePath) {
			return true
		}
	}
	return false
}

// MatchesAt reports whether filePath matches the pattern at index.
func (matcher *PathMatcher) MatchesAt(index int, filePath string) bool {
	return matcher.globs[index].Match(filePath)
}
