package domain

import "time"

// IdempotencyRecord maps a logical operation identity to the ledger entry it
// produced. Written exactly once per successful operation; a second attempt
// with the same key finds the record and replays the prior entry.
type IdempotencyRecord struct {
	Key       string
	EntryID   string
	CreatedAt time.Time
}
