// Package version provides version information for the application.
//
// This package defines version constants and utilities for accessing version
// information throughout the application. It centralizes version management
// to ensure consistent version reporting across all components.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version is the application version, overridden at build time via ldflags.
var Version = "0.1.0"

// Revision is the VCS revision the binary was built from.
var Revision = findRevision()

func findRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	revision := "unknown"
	modified := false

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}

	if modified {
		revision += "-dirty"
	}

	return revision
}

// GetVersionString returns the full version string, including the revision.
func GetVersionString() string {
	return fmt.Sprintf("%s+%s", Version, Revision)
}
