// Package output renders the textual sections of the summary artifact.
package output

import (
	"fmt"
	"io"
	"strings"
)

const (
	// DirectoryStructureHeading introduces the rendered tree.
	DirectoryStructureHeading = "Directory Structure:\n"
	// ConcatenatedFilesHeading introduces the concatenated file sections.
	ConcatenatedFilesHeading = "\n\nConcatenated Files:\n"

	noPatternsPlaceholder = "None"
	patternSeparator      = ", "

	errorWritePreambleFormat = "writing artifact preamble: %w"

	headerTemplate = `
**Project Analysis Instructions**

Below is a summary of the project **%s**, starting with the directory tree structure to provide an overview. This is followed by the main file, if specified, which serves as the primary runner for this tool. Use this main file to inform your understanding of all subsequent scripts, as it orchestrates the execution flow and primary logic of the project. Additional scripts have also been included for a comprehensive analysis of the tool.

User-specified files to include:
%s

User-specified patterns to ignore:
%s

Please perform the following tasks:

1. **Summarize the Tool/Code Purpose**: Provide a high-level summary of what this tool or code is designed to do.
2. **Identify and Summarize Critical Functions and Dependencies**: Note any critical functions, methods, or dependencies within the project. Summarize their roles and how they interact with the main file.
3. **Contextual Analysis**: Use the main file to contextualize the functionality and importance of the subsequent scripts. Highlight how they contribute to the overall operation of the tool.

*Prompt Engineering Instructions*:
- **Core Function Focus**: Prioritize analysis on core functions, such as scientific computations, large computations, or scripts that manage multiple functions. Avoid spending time on wrapper functions or utility functions unless they play a significant role.
- **Execution Flow**: Clearly outline the execution flow starting from the main file to other dependent scripts.
- **File Boundaries**: Recognize the start of a new file with the pattern ` + "`--- <file_path> ---`" + `.
- **Avoid Redundancy**: Do not reproduce the code verbatim. Instead, focus on storing and utilizing the code structure and logic in your memory for this analysis.
`
)

// RenderHeader returns the instructional header naming projectName and echoing the
// resolved include and ignore patterns.
func RenderHeader(projectName string, includePatterns []string, ignorePatterns []string) string {
	return fmt.Sprintf(headerTemplate, projectName, joinPatterns(includePatterns), joinPatterns(ignorePatterns))
}

// WritePreamble writes the header, the directory structure and the heading that precedes
// the concatenated files.
func WritePreamble(writer io.Writer, header string, treeLines []string) error {
	var preamble strings.Builder
	preamble.WriteString(header)
	preamble.WriteString(DirectoryStructureHeading)
	preamble.WriteString(strings.Join(treeLines, "\n"))
	preamble.WriteString(ConcatenatedFilesHeading)
	if _, writeError := io.WriteString(writer, preamble.String()); writeError != nil {
		return fmt.Errorf(errorWritePreambleFormat, writeError)
	}
	return nil
}

func joinPatterns(patterns []string) string {
	if len(patterns) == 0 {
		return noPatternsPlaceholder
	}
	return strings.Join(patterns, patternSeparator)
}
