// Package version reports the ec2etl build stamped in by the linker, e.g.
//
//	go build -ldflags "-X github.com/devA2C3/cloudvisor-test/internal/version.version=v0.3.0"
package version

import (
	"fmt"
	"runtime"
)

// Set with -ldflags -X at build time.
var (
	version   = "dev"
	buildDate = "unknown" // RFC3339
	gitCommit = "unknown"
)

// appName prefixes the version line and the AWS SDK application id
const appName = "ec2etl"

// BuildInfo describes the running ec2etl binary
type BuildInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
	GoVersion string `json:"goVersion"`
}

// Get returns the build information.
func Get() BuildInfo {
	return BuildInfo{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
		GoVersion: runtime.Version(),
	}
}

// String renders the --version line.
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s version %s (commit: %s, built: %s, %s)",
		appName, b.Version, b.GitCommit, b.BuildDate, b.GoVersion)
}

// AppID identifies ec2etl in the user agent of its AWS API calls
func (b BuildInfo) AppID() string {
	return appName + "/" + b.Version
}
