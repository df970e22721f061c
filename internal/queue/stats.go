package queue

import "github.com/randomizedcoder/mpmc-queue/internal/padded"

// Stats is a snapshot of queue activity.
type Stats struct {
	Enqueued     uint64 `json:"enqueued"`
	Dequeued     uint64 `json:"dequeued"`
	Full         uint64 `json:"full"`
	Empty        uint64 `json:"empty"`
	ClaimRetries uint64 `json:"claim_retries"`
}

type counters struct {
	full    padded.Uint64
	empty   padded.Uint64
	retries padded.Uint64
}
