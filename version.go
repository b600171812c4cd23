package mregion

import "fmt"

// Version constants
const (
	Major = 0
	Minor = 1
	Patch = 0
)

// Version returns the version string of mregion including the flag table
// compiled into this build.
func Version() string {
	return fmt.Sprintf("mregion %d.%d.%d (%s)", Major, Minor, Patch, platform.Name())
}
