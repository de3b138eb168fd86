package catalog

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string // Version is the current git tag with v prefix stripped
	Commit  string // Commit is the current git commit SHA
	Date    string // Date is the build date in RFC3339
}

var buildInfo = BuildInfo{
	Version: "dev",
	Commit:  "none",
	Date:    "unknown",
}

// SetBuildInfo records the version metadata stamped into main at link time.
// Empty values keep their defaults.
func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildInfo.Version = version
	}
	if commit != "" {
		buildInfo.Commit = commit
	}
	if date != "" {
		buildInfo.Date = date
	}
}

// GetBuildInfo returns the build information of the binary.
func GetBuildInfo() BuildInfo {
	return buildInfo
}
