package buildinfo

// These variables are set via -ldflags at build time:
//
//	-X 'github.com/m3rciful/hallbot/core/buildinfo.Version=v1.0.0'
//	-X 'github.com/m3rciful/hallbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/hallbot/core/buildinfo.Date=2026-10-01T12:00:00Z'
var (
	// Version reports the semantic version or tag of the build.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)

// String renders a one-line build description for CLI and health output.
func String() string {
	s := Version + " (" + Commit
	if Date != "" {
		s += ", " + Date
	}
	return s + ")"
}
