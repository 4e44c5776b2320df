package utils

import (
	"os/exec"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion     = "unknown"
	develBuildVersion  = "(devel)"
	gitExecutableName  = "git"
	gitDescribeCommand = "describe"
)

// Version may be set at link time with -ldflags "-X .../internal/utils.Version=v1.2.3".
var Version = EmptyString

// GetApplicationVersion reports the linked version, then the module version recorded in the
// build information, then the output of git describe, and finally "unknown".
func GetApplicationVersion() string {
	if Version != EmptyString {
		return Version
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != EmptyString && buildInfo.Main.Version != develBuildVersion {
		return buildInfo.Main.Version
	}
	// #nosec G204
	describeOutput, describeError := exec.Command(gitExecutableName, gitDescribeCommand, "--tags", "--always", "--dirty").Output()
	if describeError == nil {
		if describedVersion := strings.TrimSpace(string(describeOutput)); describedVersion != EmptyString {
			return describedVersion
		}
	}
	return unknownVersion
}
