// Package portfolio holds a user's tracked instruments and refreshes their
// quotes in batch.
package portfolio

import "time"

// MaxWatch is the number of watchlist slots per user, in addition to the
// single primary slot.
const MaxWatch = 5

// Instrument is one tracked company. The quote pipeline only ever writes
// CurrentPrice, Change, ChangeRate and LastUpdated; the remaining fields
// belong to the user.
type Instrument struct {
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	CurrentPrice int64     `json:"current_price"`
	TargetBuy    int64     `json:"target_buy"`
	TargetSell   int64     `json:"target_sell"`
	Description  string    `json:"description"`
	Change       int64     `json:"change"`
	ChangeRate   float64   `json:"change_rate"`
	LastUpdated  time.Time `json:"last_updated"`
}

// Set is one user's tracked instruments: a primary slot plus up to MaxWatch
// watchlist slots. Slots with an empty code are valid — the instrument is
// simply not linked to a live quote yet.
type Set struct {
	Primary Instrument   `json:"primary"`
	Watch   []Instrument `json:"watch"`
}

// clone returns a deep copy so a refresh never mutates the caller's Set.
func (s Set) clone() Set {
	out := s
	out.Watch = append([]Instrument(nil), s.Watch...)
	return out
}
