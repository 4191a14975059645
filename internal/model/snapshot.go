package model

import (
	"encoding/json"
	"time"
)

// Snapshot records one full computation pass for run history.
type Snapshot struct {
	ID             string          `json:"id"`
	Cities         []string        `json:"cities"`
	TotalListings  int             `json:"total_listings"`
	DroppedRows    int             `json:"dropped_rows"`
	UnmatchedNames int             `json:"unmatched_names"`
	Summary        json.RawMessage `json:"summary,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
