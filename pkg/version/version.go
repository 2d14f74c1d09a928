package version

import "fmt"

// Set at build time with -ldflags "-X".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func String() string {
	return fmt.Sprintf("hookbridge %s (commit: %s, built: %s)", Version, Commit, BuildTime)
}
