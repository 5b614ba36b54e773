// Package version provides build-time version information for the city explorer service.
// Values are injected during the build with -ldflags "-X ...".
package version

import (
	"runtime"
	"time"
)

// Build-time variables set via ldflags.
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

// Info contains version and build information.
type Info struct {
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	BuildTime string    `json:"build_time"`
	GitCommit string    `json:"git_commit"`
	GitBranch string    `json:"git_branch"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
	BuildDate time.Time `json:"build_date"`
}

// ServiceName identifies the binary in version output.
const ServiceName = "city-explorer-service"

// Get returns version and build information. BuildDate is zero unless
// BuildTime was set to an RFC3339 timestamp.
func Get() Info {
	var buildDate time.Time

	if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
		buildDate = t
	}

	return Info{
		Service:   ServiceName,
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		BuildDate: buildDate,
	}
}
