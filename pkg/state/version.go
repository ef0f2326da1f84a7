package state

// Version information for the state module.
const (
	// Version is the current version of the state module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)

// FormatVersion tags every encoded state file.
const FormatVersion = 1
