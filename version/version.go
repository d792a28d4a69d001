// Package version reports the version of the pch2csd tools.
package version

import "runtime/debug"

// Version can be set at build time, e.g.
// go build -ldflags "-X github.com/zappfinger/pch2csd/version.Version=$(git describe --dirty)"
var Version string

// Hash returns the short VCS revision the binary was built from, with a
// -dirty suffix for modified working trees, or "" if it is not known.
func Hash() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var revision string
	modified := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision != "" && modified {
		revision += "-dirty"
	}
	return revision
}

// VersionOrHash returns Version if it was set at build time, the VCS hash
// otherwise.
func VersionOrHash() string {
	if Version != "" {
		return Version
	}
	if h := Hash(); h != "" {
		return h
	}
	return "(devel)"
}
