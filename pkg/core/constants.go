package core

const (
	// DefaultRegistryURL is the repository holding the bundled license registry
	DefaultRegistryURL = "https://github.com/arc-language/pkglicense"

	// DefaultRegistryBranch is the branch synced by default
	DefaultRegistryBranch = "main"
)
