package domain

import (
	"time"
)

// Fingerprint identifies the inputs a selection run was computed over.  A
// checkpoint only applies to inputs with an identical fingerprint.
type Fingerprint struct {
	Universe   int    `json:"universe"`
	Candidates int    `json:"candidates"`
	Digest     string `json:"digest"`
}

// Run is a named, persisted selection in progress (or finished).
type Run struct {
	Name          string      `json:"name"`
	Fingerprint   Fingerprint `json:"fingerprint"`
	Strategy      string      `json:"strategy"`
	PruneInterval int         `json:"prune_interval"`
	Picks         int         `json:"picks"`
	Complete      bool        `json:"complete"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func NewRun(name string, fp Fingerprint) *Run {
	now := time.Now()
	run := &Run{
		Name:        name,
		Fingerprint: fp,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return run
}

// RunPick is one persisted pick of a run.
type RunPick struct {
	Iteration int    `json:"iteration"` // 1-based.
	Index     int    `json:"index"`     // Position in the candidate list.
	Gain      int    `json:"gain"`
	Title     string `json:"title,omitempty"`
}
