package pipeline

import "time"

const (
	// SignedURLTTL is how long an export download link stays valid.
	SignedURLTTL = 5 * time.Minute

	// stagingPattern names the per-export temp directory.
	stagingPattern = "hikmacash-export-*"
)
