// Package build carries version information stamped at link time.
package build

// Version is overridden via -ldflags at release builds.
var Version = "dev"
