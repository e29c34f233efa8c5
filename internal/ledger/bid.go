// Package ledger derives team balances and keeps the bid log of the lot on
// the block.
package ledger

import "time"

// Bid is one accepted bid amount.
type Bid struct {
	Amount int       `json:"amount"`
	Time   time.Time `json:"timestamp"`
}

// Bids is a newest-first log for a single lot. A Bids value is never
// modified in place; Record returns a new log.
type Bids struct {
	entries []Bid
}

// Record returns a log with b prepended.
func (l Bids) Record(b Bid) Bids {
	next := make([]Bid, 0, len(l.entries)+1)
	next = append(next, b)
	next = append(next, l.entries...)
	return Bids{entries: next}
}

// Current returns the most recent bid.
func (l Bids) Current() (Bid, bool) {
	if len(l.entries) == 0 {
		return Bid{}, false
	}
	return l.entries[0], true
}

// Clear returns an empty log.
func (Bids) Clear() Bids { return Bids{} }

// Len returns the number of recorded bids.
func (l Bids) Len() int { return len(l.entries) }

// History returns a copy of the log, newest first. It is never nil.
func (l Bids) History() []Bid {
	return append(make([]Bid, 0, len(l.entries)), l.entries...)
}
