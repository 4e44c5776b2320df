// Package clipboard copies the finished summary artifact to the system clipboard.
package clipboard

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
)

const (
	errorReadArtifactFormat = "read artifact %s for clipboard: %w"
	errorCopyArtifactFormat = "copy artifact %s to clipboard: %w"
)

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a clipboard Service.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	return clipboard.WriteAll(text)
}

// CopyArtifact reads the artifact at artifactPath and hands its content to copier.
func CopyArtifact(copier Copier, artifactPath string) error {
	content, readError := os.ReadFile(artifactPath)
	if readError != nil {
		return fmt.Errorf(errorReadArtifactFormat, artifactPath, readError)
	}
	if copyError := copier.Copy(string(content)); copyError != nil {
		return fmt.Errorf(errorCopyArtifactFormat, artifactPath, copyError)
	}
	return nil
}

var _ Copier = (*Service)(nil)
