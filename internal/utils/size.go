package utils

import (
	"strconv"
	"strings"
)

const fileSizeStep = 1024

var fileSizeUnits = [...]string{"B", "KB", "MB", "GB", "TB"}

// FormatFileSize renders a byte count for log output, for example "512B", "1.5KB" or "10MB".
// Values below ten units keep one decimal place; negative counts render as "0B".
func FormatFileSize(byteCount int64) string {
	if byteCount < fileSizeStep {
		return strconv.FormatInt(max(byteCount, 0), 10) + fileSizeUnits[0]
	}
	scaledSize := float64(byteCount)
	unitIndex := 0
	for scaledSize >= fileSizeStep && unitIndex < len(fileSizeUnits)-1 {
		scaledSize /= fileSizeStep
		unitIndex++
	}
	precision := 0
	if scaledSize < 10 {
		precision = 1
	}
	formatted := strings.TrimSuffix(strconv.FormatFloat(scaledSize, 'f', precision, 64), ".0")
	return formatted + fileSizeUnits[unitIndex]
}
