// Package version reports the build version of gogallery.
package version

import "runtime/debug"

// Set at build time with -ldflags "-X github.com/rshade/gogallery/pkg/version.version=v1.2.3".
//
//nolint:gochecknoglobals // Overridden by the linker.
var version = ""

const devVersion = "dev"

// GetVersion returns the linker-supplied version, the module version from
// the build info, or "dev".
func GetVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return devVersion
}
