// SPDX-License-Identifier: MIT
//
// Package build carries the application name, build time, commit and
// version embedded at link time:
//
//	go build -ldflags "-X voccal/pkg/build.buildName=voccal \
//	    -X voccal/pkg/build.buildTime=$(date -u +%FT%TZ) \
//	    -X voccal/pkg/build.buildCommit=$(git rev-parse --short HEAD) \
//	    -X voccal/pkg/build.buildVersion=0.1.0"
//
// A binary built without any of these flags runs with development values.
package build

import "fmt"

// Description is the one-line summary shown in --help.
const Description = "Voice filter engine: preview, record and render filtered audio"

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// Populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = devFlags()
)

func devFlags() *ldFlags {
	return &ldFlags{
		Name:        "voccal",
		Description: Description,
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
}

// Initialize copies the ldflags values into the build information. With no
// flags set it keeps the development values; a partial set is an error
// because it points at a broken release script.
func Initialize() error {
	if buildName == "" && buildTime == "" && buildCommit == "" && buildVersion == "" {
		buildFlags = devFlags()
		return nil
	}
	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// String formats the version line printed by --version.
func (f *ldFlags) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}
