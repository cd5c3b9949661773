package quote

import (
	"context"
	"fmt"
	"time"
)

// Snapshot is one observed quote for an instrument code.
// Snapshots are immutable once produced; a refetch replaces the whole value.
type Snapshot struct {
	Code       string    `json:"code"`
	Price      int64     `json:"price"`
	Change     int64     `json:"change"`
	ChangeRate float64   `json:"change_rate"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Source produces snapshots for instrument codes.
type Source interface {
	Name() string
	Fetch(ctx context.Context, code string) (Snapshot, error)
}

// Kind classifies a fetch failure.
type Kind int

const (
	KindNetwork Kind = iota + 1 // connection refused, timeout, DNS
	KindHTTP                    // non-success status from the source site
	KindParse                   // document reachable but no extractable price
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error is a classified fetch failure for a single instrument code.
type Error struct {
	Code string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.Code, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
