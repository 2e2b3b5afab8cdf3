package version

// Overridden at build time via -ldflags.
var (
	number = "dev"
	commit = "unknown"
)

func Number() string {
	return number
}

func Commit() string {
	return commit
}
