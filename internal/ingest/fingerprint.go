package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/sentinelops/sentinel/internal/domain/alert"
)

// fingerprintInput is the canonical identity of an alert condition. Only
// title, source and labels participate: events differing in any other field
// still belong to the same condition.
type fingerprintInput struct {
	Title  string            `json:"title"`
	Source string            `json:"source"`
	Labels map[string]string `json:"labels"`
}

// Fingerprint computes the stable fingerprint for an event. encoding/json
// sorts map keys, so the digest is independent of label insertion order.
func Fingerprint(ev *alert.Event) string {
	in := fingerprintInput{
		Title:  ev.Title,
		Source: ev.Source,
		Labels: ev.Labels,
	}
	if len(in.Labels) == 0 {
		in.Labels = nil
	}
	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
