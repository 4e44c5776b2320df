// Package types defines the constants and data structures shared across the repo-analyzer packages.
package types

import "time"

const (
	// HiddenNamePrefix marks file and directory names treated as hidden.
	HiddenNamePrefix = "."
	// TreeBranchMarker precedes every rendered tree entry.
	TreeBranchMarker = "|-- "
	// TreeIndentUnit is repeated once per depth level.
	TreeIndentUnit = "  "
	// TreeTruncationSentinel replaces the entries dropped from a directory listing.
	TreeTruncationSentinel = "..."

	// SectionHeaderFormat introduces the content of a concatenated file.
	SectionHeaderFormat = "\n\n--- %s ---\n\n"
	// MainSectionHeaderFormat introduces the content of the main file.
	MainSectionHeaderFormat = "\n\n--- %s (Main File) ---\n\n"

	// SummaryFileSuffix is appended to the analyzed directory name to build the artifact name.
	SummaryFileSuffix = "_summary.txt"

	// UnlimitedCharacters disables the character budget.
	UnlimitedCharacters = 0
	// DefaultTreeDepth limits the rendered tree when no depth is configured.
	DefaultTreeDepth = 10
	// DefaultMaxItems caps the entries rendered per directory when no cap is configured.
	DefaultMaxItems = 50
	// DefaultReadTimeout is the soft wall-clock threshold for reading a single file.
	DefaultReadTimeout = 10 * time.Second

	// DefaultIncludeFileName lists the include patterns when no include file is configured.
	DefaultIncludeFileName = "files_to_include.txt"
	// DefaultIgnoreFileName lists the ignore patterns when no ignore file is configured.
	DefaultIgnoreFileName = "files_to_ignore.txt"
	// DefaultTokenizerModel selects the tokenizer used for artifact token estimates.
	DefaultTokenizerModel = "gpt-4o"
)

// ValidatedDirectory is an analyzed directory that already passed existence checks.
type ValidatedDirectory struct {
	// Path is the cleaned directory path as supplied by the user.
	Path string
	// AbsolutePath is the absolute form of Path.
	AbsolutePath string
	// ProjectName is the base name of AbsolutePath.
	ProjectName string
}

// AnalysisSummary captures aggregate information about a finished artifact.
type AnalysisSummary struct {
	OutputPath   string
	Characters   int
	FilesWritten int
	SizeBytes    int64
	Tokens       int
	Model        string
	LimitReached bool
}
