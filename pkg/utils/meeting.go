package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// MeetingCode derives a stable 12-character room code from the given seed.
// Stability matters: re-running a kickoff for the same project must produce
// the same meeting link.
func MeetingCode(seed []byte) string {
	sum := sha256.Sum256(seed)
	return hex.EncodeToString(sum[:])[:12]
}

// MeetingLink builds the full meeting URL for a room code.
func MeetingLink(baseURL string, seed []byte) string {
	return fmt.Sprintf("%s/%s", baseURL, MeetingCode(seed))
}
