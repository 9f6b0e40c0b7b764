package output

import (
	"os"
)

// GetDefaultVerbosity returns appropriate default based on environment
func GetDefaultVerbosity() VerbosityLevel {
	// Git hook context (GIT_AUTHOR_DATE set by git)
	if os.Getenv("GIT_AUTHOR_DATE") != "" {
		return VerbosityQuiet
	}

	// Explicit machine-readable request
	if os.Getenv("HEATMAP_JSON") == "1" {
		return VerbosityJSON
	}

	// Interactive terminal and CI
	return VerbosityStandard
}
