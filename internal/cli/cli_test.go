package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/temirov/repoanalyzer/internal/config"
	"github.com/temirov/repoanalyzer/internal/tokenizer"
	"github.com/temirov/repoanalyzer/internal/types"
)

type stubCounter struct{}

func (stubCounter) Name() string { return "stub" }

func (stubCounter) CountString(input string) (int, error) {
	return len(strings.Fields(input)), nil
}

type recordingCopier struct {
	copied string
	err    error
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = text
	return copier.err
}

func writeFixture(testingHandle *testing.T, rootDirectory string, relativePath string, content string) string {
	testingHandle.Helper()
	filePath := filepath.Join(rootDirectory, relativePath)
	if makeDirError := os.MkdirAll(filepath.Dir(filePath), 0o755); makeDirError != nil {
		testingHandle.Fatalf("mkdir %s: %v", filepath.Dir(filePath), makeDirError)
	}
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("write %s: %v", filePath, writeError)
	}
	return filePath
}

// createDemoProject lays out a small project and pattern files, returning the project
// directory and the pattern file paths.
func createDemoProject(testingHandle *testing.T) (string, string, string) {
	testingHandle.Helper()
	baseDirectory := testingHandle.TempDir()
	projectDirectory := filepath.Join(baseDirectory, "demo")
	writeFixture(testingHandle, projectDirectory, "main.py", "from src import util\nutil.run()\n")
	writeFixture(testingHandle, projectDirectory, "src/util.py", "def run():\n    return 1\n")
	writeFixture(testingHandle, projectDirectory, "README.md", "# demo\n")
	writeFixture(testingHandle, projectDirectory, "logo.png", "png")
	writeFixture(testingHandle, projectDirectory, ".secret.py", "token = 1\n")
	writeFixture(testingHandle, projectDirectory, "tests/test_util.py", "assert True\n")
	includeFile := writeFixture(testingHandle, baseDirectory, "include.txt", "*.py\n\n")
	ignoreFile := writeFixture(testingHandle, baseDirectory, "ignore.txt", "*/tests/*\n")
	return projectDirectory, includeFile, ignoreFile
}

func testDependencies(testingHandle *testing.T) dependencies {
	testingHandle.Helper()
	return dependencies{
		logger:           zap.NewNop(),
		copier:           &recordingCopier{},
		newCounter:       func(tokenizer.Config) (tokenizer.Counter, string, error) { return stubCounter{}, "stub-model", nil },
		workingDirectory: testingHandle.TempDir(),
		homeDirectory:    testingHandle.TempDir(),
	}
}

func executeRoot(testingHandle *testing.T, deps dependencies, arguments ...string) (string, error) {
	testingHandle.Helper()
	rootCommand := newRootCommand(deps)
	var stdout bytes.Buffer
	rootCommand.SetOut(&stdout)
	rootCommand.SetErr(io.Discard)
	rootCommand.SetArgs(attachSwitchValues(rootCommand, arguments))
	executeError := rootCommand.Execute()
	return stdout.String(), executeError
}

func TestAnalyzeWritesSummary(testingHandle *testing.T) {
	projectDirectory, includeFile, ignoreFile := createDemoProject(testingHandle)
	mainFile := filepath.Join(projectDirectory, "main.py")

	stdout, executeError := executeRoot(testingHandle, testDependencies(testingHandle),
		projectDirectory,
		"--include-file", includeFile,
		"--ignore-file", ignoreFile,
		"--main-file", mainFile,
	)
	if executeError != nil {
		testingHandle.Fatalf("execute error: %v", executeError)
	}

	outputPath := filepath.Join(projectDirectory, "demo"+types.SummaryFileSuffix)
	if strings.TrimSpace(stdout) != outputPath {
		testingHandle.Fatalf("expected output path %q on stdout, got %q", outputPath, stdout)
	}
	summaryBytes, readError := os.ReadFile(outputPath)
	if readError != nil {
		testingHandle.Fatalf("read summary: %v", readError)
	}
	summary := string(summaryBytes)

	expectedFragments := []string{
		"**demo**",
		"User-specified files to include:\n*.py\n",
		"User-specified patterns to ignore:\n*/tests/*\n",
		"Directory Structure:\n",
		"|-- README.md",
		"|-- src/\n  |-- util.py",
		"\n\nConcatenated Files:\n",
		fmt.Sprintf(types.MainSectionHeaderFormat, mainFile) + "from src import util\nutil.run()\n",
		fmt.Sprintf(types.SectionHeaderFormat, filepath.Join(projectDirectory, "src", "util.py")) + "def run():\n    return 1\n",
	}
	for _, fragment := range expectedFragments {
		if !strings.Contains(summary, fragment) {
			testingHandle.Fatalf("summary missing %q:\n%s", fragment, summary)
		}
	}
	for _, unexpected := range []string{"test_util.py ---", ".secret.py", "README.md ---", "logo.png ---"} {
		if strings.Contains(summary, unexpected) {
			testingHandle.Fatalf("summary unexpectedly contains %q", unexpected)
		}
	}
	if strings.Index(summary, "(Main File)") > strings.Index(summary, "util.py ---") {
		testingHandle.Fatalf("main file must precede the other sections")
	}
}

func TestAnalyzeRerunExcludesPreviousSummary(testingHandle *testing.T) {
	projectDirectory, _, _ := createDemoProject(testingHandle)
	deps := testDependencies(testingHandle)
	missingPatterns := filepath.Join(testingHandle.TempDir(), "absent.txt")
	arguments := []string{projectDirectory, "--include-file", missingPatterns, "--ignore-file", missingPatterns}

	for run := 0; run < 2; run++ {
		if _, executeError := executeRoot(testingHandle, deps, arguments...); executeError != nil {
			testingHandle.Fatalf("run %d error: %v", run, executeError)
		}
	}
	summaryBytes, readError := os.ReadFile(filepath.Join(projectDirectory, "demo"+types.SummaryFileSuffix))
	if readError != nil {
		testingHandle.Fatalf("read summary: %v", readError)
	}
	summary := string(summaryBytes)
	if strings.Contains(summary, "demo_summary.txt ---") {
		testingHandle.Fatalf("summary must not include itself")
	}
	if !strings.Contains(summary, "README.md ---") || !strings.Contains(summary, "test_util.py ---") {
		testingHandle.Fatalf("without patterns every allowed file is concatenated:\n%s", summary)
	}
	if !strings.Contains(summary, "User-specified files to include:\nNone\n") {
		testingHandle.Fatalf("missing pattern files must be echoed as None")
	}
}

func TestAnalyzeCharacterLimit(testingHandle *testing.T) {
	projectDirectory := filepath.Join(testingHandle.TempDir(), "limited")
	writeFixture(testingHandle, projectDirectory, "a.txt", "abcdefghij\n")
	writeFixture(testingHandle, projectDirectory, "b.txt", "klmnopqrst\n")
	missingPatterns := filepath.Join(testingHandle.TempDir(), "absent.txt")

	_, executeError := executeRoot(testingHandle, testDependencies(testingHandle),
		projectDirectory, "--max-chars", "4", "--include-file", missingPatterns, "--ignore-file", missingPatterns)
	if executeError != nil {
		testingHandle.Fatalf("execute error: %v", executeError)
	}
	summaryBytes, readError := os.ReadFile(filepath.Join(projectDirectory, "limited"+types.SummaryFileSuffix))
	if readError != nil {
		testingHandle.Fatalf("read summary: %v", readError)
	}
	concatenated := strings.SplitN(string(summaryBytes), "\n\nConcatenated Files:\n", 2)[1]
	expected := fmt.Sprintf(types.SectionHeaderFormat, filepath.Join(projectDirectory, "a.txt")) + "abcd"
	if concatenated != expected {
		testingHandle.Fatalf("unexpected concatenated section %q, want %q", concatenated, expected)
	}
}

func TestAnalyzeTokensAndClipboard(testingHandle *testing.T) {
	projectDirectory, includeFile, ignoreFile := createDemoProject(testingHandle)
	deps := testDependencies(testingHandle)
	copier := &recordingCopier{}
	deps.copier = copier

	_, executeError := executeRoot(testingHandle, deps,
		projectDirectory, "--include-file", includeFile, "--ignore-file", ignoreFile, "--tokens", "--clipboard", "yes")
	if executeError != nil {
		testingHandle.Fatalf("execute error: %v", executeError)
	}
	summaryBytes, readError := os.ReadFile(filepath.Join(projectDirectory, "demo"+types.SummaryFileSuffix))
	if readError != nil {
		testingHandle.Fatalf("read summary: %v", readError)
	}
	if copier.copied != string(summaryBytes) {
		testingHandle.Fatalf("clipboard content differs from the summary")
	}
}

func TestAnalyzeClipboardFailureIsNotFatal(testingHandle *testing.T) {
	projectDirectory, includeFile, ignoreFile := createDemoProject(testingHandle)
	deps := testDependencies(testingHandle)
	deps.copier = &recordingCopier{err: errors.New("no display")}

	if _, executeError := executeRoot(testingHandle, deps,
		projectDirectory, "--include-file", includeFile, "--ignore-file", ignoreFile, "--clipboard"); executeError != nil {
		testingHandle.Fatalf("clipboard failure must not fail the run: %v", executeError)
	}
}

func TestAnalyzeTokenCounterFailureIsFatal(testingHandle *testing.T) {
	projectDirectory, includeFile, ignoreFile := createDemoProject(testingHandle)
	deps := testDependencies(testingHandle)
	counterFailure := errors.New("encoding unavailable")
	deps.newCounter = func(tokenizer.Config) (tokenizer.Counter, string, error) { return nil, "", counterFailure }

	_, executeError := executeRoot(testingHandle, deps,
		projectDirectory, "--include-file", includeFile, "--ignore-file", ignoreFile, "--tokens")
	if !errors.Is(executeError, counterFailure) {
		testingHandle.Fatalf("expected counter failure, got %v", executeError)
	}
}

func TestAnalyzeValidation(testingHandle *testing.T) {
	projectDirectory, _, _ := createDemoProject(testingHandle)
	regularFile := filepath.Join(projectDirectory, "main.py")

	testCases := []struct {
		name          string
		arguments     []string
		expectedError string
	}{
		{name: "missing_argument", arguments: []string{}, expectedError: errorDirectoryArgumentRequired},
		{name: "missing_directory", arguments: []string{filepath.Join(projectDirectory, "absent")}, expectedError: "does not exist"},
		{name: "not_a_directory", arguments: []string{regularFile}, expectedError: "is not a directory"},
		{name: "zero_tree_depth", arguments: []string{projectDirectory, "--tree-depth", "0"}, expectedError: "--tree-depth must be at least 1"},
		{name: "zero_max_items", arguments: []string{projectDirectory, "--max-items", "0"}, expectedError: "--max-items must be at least 1"},
		{name: "too_many_arguments", arguments: []string{projectDirectory, projectDirectory}, expectedError: "accepts at most 1 arg"},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			_, executeError := executeRoot(testingHandle, testDependencies(testingHandle), testCase.arguments...)
			if executeError == nil || !strings.Contains(executeError.Error(), testCase.expectedError) {
				testingHandle.Fatalf("expected error containing %q, got %v", testCase.expectedError, executeError)
			}
		})
	}
}

func TestResolveSettingsPrecedence(testingHandle *testing.T) {
	projectDirectory, _, _ := createDemoProject(testingHandle)
	directory, directoryError := validateDirectory(projectDirectory)
	if directoryError != nil {
		testingHandle.Fatalf("validateDirectory error: %v", directoryError)
	}
	configuredChars := 5
	configuredDepth := 3
	configuredHidden := true
	configuration := config.AnalyzeConfiguration{
		MaxChars:      &configuredChars,
		TreeDepth:     &configuredDepth,
		IncludeHidden: &configuredHidden,
		IgnoreFile:    "configured_ignore.txt",
		Exclude:       []string{"*.lock"},
		Tokens:        config.TokenConfiguration{Model: "gpt-4"},
	}

	rootCommand := newRootCommand(testDependencies(testingHandle))
	if parseError := rootCommand.ParseFlags([]string{"--max-chars", "7", "-e", "*.lock", "-e", "*.tmp"}); parseError != nil {
		testingHandle.Fatalf("parse flags: %v", parseError)
	}
	flags := analyzeFlags{
		maxChars:          7,
		treeDepth:         types.DefaultTreeDepth,
		maxItems:          types.DefaultMaxItems,
		includeFile:       types.DefaultIncludeFileName,
		ignoreFile:        types.DefaultIgnoreFileName,
		exclusionPatterns: []string{"*.lock", "*.tmp"},
		model:             types.DefaultTokenizerModel,
	}
	settings, settingsError := resolveSettings(rootCommand, flags, configuration, directory)
	if settingsError != nil {
		testingHandle.Fatalf("resolveSettings error: %v", settingsError)
	}
	if settings.maxCharacters != 7 {
		testingHandle.Fatalf("flag must win over configuration, got %d", settings.maxCharacters)
	}
	if settings.treeDepth != 3 || !settings.includeHidden || settings.ignoreFile != "configured_ignore.txt" || settings.tokenModel != "gpt-4" {
		testingHandle.Fatalf("configuration must fill unset flags: %+v", settings)
	}
	if settings.maxItems != types.DefaultMaxItems || settings.includeFile != types.DefaultIncludeFileName {
		testingHandle.Fatalf("defaults must remain when neither flag nor configuration is set: %+v", settings)
	}
	if strings.Join(settings.exclusionPatterns, ",") != "*.lock,*.tmp" {
		testingHandle.Fatalf("unexpected exclusion patterns %v", settings.exclusionPatterns)
	}
	if settings.outputPath != filepath.Join(projectDirectory, "demo_summary.txt") {
		testingHandle.Fatalf("unexpected output path %q", settings.outputPath)
	}
}

func TestResolveMainFile(testingHandle *testing.T) {
	projectDirectory, _, _ := createDemoProject(testingHandle)
	directory, directoryError := validateDirectory(projectDirectory)
	if directoryError != nil {
		testingHandle.Fatalf("validateDirectory error: %v", directoryError)
	}
	outsideFile := writeFixture(testingHandle, testingHandle.TempDir(), "outside.py", "x = 1\n")

	testCases := []struct {
		name     string
		mainFile string
		expected string
	}{
		{name: "empty", mainFile: "", expected: ""},
		{name: "absolute_inside", mainFile: filepath.Join(projectDirectory, "src", "..", "main.py"), expected: filepath.Join(projectDirectory, "main.py")},
		{name: "relative_to_directory", mainFile: "src/util.py", expected: filepath.Join(projectDirectory, "src", "util.py")},
		{name: "outside_directory", mainFile: outsideFile, expected: outsideFile},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			if resolved := resolveMainFile(testCase.mainFile, directory); resolved != testCase.expected {
				testingHandle.Fatalf("resolveMainFile(%q) = %q, want %q", testCase.mainFile, resolved, testCase.expected)
			}
		})
	}
}

func TestInitCommandWritesConfiguration(testingHandle *testing.T) {
	deps := testDependencies(testingHandle)
	expectedPath := filepath.Join(deps.workingDirectory, "config.yaml")

	stdout, executeError := executeRoot(testingHandle, deps, "init")
	if executeError != nil {
		testingHandle.Fatalf("init error: %v", executeError)
	}
	if strings.TrimSpace(stdout) != expectedPath {
		testingHandle.Fatalf("expected %q on stdout, got %q", expectedPath, stdout)
	}
	if _, executeError = executeRoot(testingHandle, deps, "init"); executeError == nil {
		testingHandle.Fatalf("expected error when configuration exists")
	}
	if _, executeError = executeRoot(testingHandle, deps, "init", "--force"); executeError != nil {
		testingHandle.Fatalf("init --force error: %v", executeError)
	}

	globalStdout, globalError := executeRoot(testingHandle, deps, "init", "--global")
	if globalError != nil {
		testingHandle.Fatalf("init --global error: %v", globalError)
	}
	if !strings.HasPrefix(strings.TrimSpace(globalStdout), deps.homeDirectory) {
		testingHandle.Fatalf("global configuration must be written under the home directory, got %q", globalStdout)
	}
}

func TestConfigurationFileAppliesToAnalysis(testingHandle *testing.T) {
	projectDirectory, includeFile, ignoreFile := createDemoProject(testingHandle)
	deps := testDependencies(testingHandle)
	configuration := fmt.Sprintf("analyze:\n  include_file: %s\n  ignore_file: %s\n  tree_depth: 1\n", includeFile, ignoreFile)
	writeFixture(testingHandle, deps.workingDirectory, "config.yaml", configuration)

	if _, executeError := executeRoot(testingHandle, deps, projectDirectory); executeError != nil {
		testingHandle.Fatalf("execute error: %v", executeError)
	}
	summaryBytes, readError := os.ReadFile(filepath.Join(projectDirectory, "demo"+types.SummaryFileSuffix))
	if readError != nil {
		testingHandle.Fatalf("read summary: %v", readError)
	}
	summary := string(summaryBytes)
	if !strings.Contains(summary, "User-specified files to include:\n*.py\n") {
		testingHandle.Fatalf("configured include file was not applied:\n%s", summary)
	}
	if strings.Contains(summary, "  |-- util.py") {
		testingHandle.Fatalf("configured tree depth was not applied:\n%s", summary)
	}
}

func TestVersionFlag(testingHandle *testing.T) {
	stdout, executeError := executeRoot(testingHandle, testDependencies(testingHandle), "--version")
	if executeError != nil {
		testingHandle.Fatalf("version error: %v", executeError)
	}
	if !strings.HasPrefix(stdout, "repo-analyzer version: ") {
		testingHandle.Fatalf("unexpected version output %q", stdout)
	}
}
