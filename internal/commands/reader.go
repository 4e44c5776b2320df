package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/temirov/repoanalyzer/internal/types"
)

const (
	// errorOpenFileFormat is used when a file cannot be opened for reading.
	errorOpenFileFormat = "opening file %s: %w"
	// errorReadFileFormat is used when reading a file fails midway.
	errorReadFileFormat = "reading file %s: %w"
)

// lineEndingNormalizer rewrites "\r\n" and lone "\r" line endings to "\n".
var lineEndingNormalizer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// ReadBounded reads filePath line by line and returns its content together with the
// updated character count. Characters are counted as runes. When maxCharacters is bounded
// and the next line does not fit, only the fitting prefix is kept, the count is set to
// maxCharacters and reading stops. Line endings are normalized to "\n" before counting, and
// invalid UTF-8 sequences are replaced, never reported.
//
// #nosec G304
func ReadBounded(filePath string, maxCharacters int, currentCount int) (string, int, error) {
	fileHandle, openError := os.Open(filePath)
	if openError != nil {
		return "", currentCount, fmt.Errorf(errorOpenFileFormat, filePath, openError)
	}
	defer fileHandle.Close()

	bounded := maxCharacters > types.UnlimitedCharacters
	lineReader := bufio.NewReader(transform.NewReader(fileHandle, unicode.UTF8.NewDecoder()))
	var content strings.Builder
	for {
		line, readError := lineReader.ReadString('\n')
		if readError != nil && !errors.Is(readError, io.EOF) {
			return "", currentCount, fmt.Errorf(errorReadFileFormat, filePath, readError)
		}
		line = lineEndingNormalizer.Replace(line)
		lineLength := utf8.RuneCountInString(line)
		if bounded && currentCount+lineLength > maxCharacters {
			content.WriteString(runePrefix(line, maxCharacters-currentCount))
			return content.String(), maxCharacters, nil
		}
		content.WriteString(line)
		currentCount += lineLength
		if readError != nil {
			return content.String(), currentCount, nil
		}
	}
}

// runePrefix returns the first runeLimit runes of text.
func runePrefix(text string, runeLimit int) string {
	if runeLimit <= 0 {
		return ""
	}
	runeIndex := 0
	for byteOffset := range text {
		if runeIndex == runeLimit {
			return text[:byteOffset]
		}
		runeIndex++
	}
	return text
}
