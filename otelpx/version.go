// Package otelpx provides OpenTelemetry attributes and instrumentation
// metadata for container compression.
package otelpx

import "github.com/SkyTemple/skytemple-files-sub002/internal/version"

// Name of the instrumentation, used as tracer name.
const Name = "github.com/SkyTemple/skytemple-files-sub002"

// Version is the current release version of the px instrumentation.
func Version() string {
	return version.Get().Raw
}

// SemVersion is the semantic version to be supplied to tracer/meter creation.
func SemVersion() string {
	return "semver:" + Version()
}
