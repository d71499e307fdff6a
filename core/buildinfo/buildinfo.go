package buildinfo

// Set via -ldflags at build time:
//
//	-X 'github.com/m3rciful/adventbot/core/buildinfo.Version=v1.0.0'
//	-X 'github.com/m3rciful/adventbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/adventbot/core/buildinfo.Date=2024-12-01T09:00:00Z'
var (
	// Version reports the release tag of the build.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)

// Short returns "version (commit)" for startup banners and /stats output.
func Short() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
