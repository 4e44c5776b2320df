package commands_test

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTestFile creates parent directories and writes content to the path under rootDirectory.
func writeTestFile(testingHandle *testing.T, rootDirectory string, relativePath string, content string) string {
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

// makeTestDirectory creates the directory under rootDirectory.
func makeTestDirectory(testingHandle *testing.T, rootDirectory string, relativePath string) string {
	testingHandle.Helper()
	directoryPath := filepath.Join(rootDirectory, relativePath)
	if makeDirError := os.MkdirAll(directoryPath, 0o755); makeDirError != nil {
		testingHandle.Fatalf("mkdir %s: %v", directoryPath, makeDirError)
	}
	return directoryPath
}
