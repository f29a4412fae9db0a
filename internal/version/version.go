// Package version exposes build metadata injected with ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/easyblogger/internal/version.Version=v1.0.0"
package version

import "strings"

var (
	Version   = "unknown"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Full returns the version followed by the commit and build time that are known.
func Full() string {
	var extra []string
	if GitCommit != "" && GitCommit != "unknown" {
		extra = append(extra, "commit "+GitCommit)
	}
	if BuildTime != "" && BuildTime != "unknown" {
		extra = append(extra, "built "+BuildTime)
	}
	if len(extra) == 0 {
		return Version
	}
	return Version + " (" + strings.Join(extra, ", ") + ")"
}

// UserAgent is sent with every Blogger API request.
func UserAgent() string {
	return "easyblogger/" + Version
}
