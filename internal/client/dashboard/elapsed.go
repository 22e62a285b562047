package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/valuationdesk/internal/client/models"
)

// Elapsed is the age of an open record split into display units.
type Elapsed struct {
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
}

// NewElapsed splits d. Negative durations clamp to zero.
func NewElapsed(d time.Duration) Elapsed {
	s := max(int64(d/time.Second), 0)
	return Elapsed{
		Days:    s / 86400,
		Hours:   s / 3600 % 24,
		Minutes: s / 60 % 60,
		Seconds: s % 60,
	}
}

// Total is the elapsed time in whole seconds.
func (e Elapsed) Total() int64 {
	return e.Days*86400 + e.Hours*3600 + e.Minutes*60 + e.Seconds
}

func (e Elapsed) String() string {
	return fmt.Sprintf("%dd %02dh %02dm %02ds", e.Days, e.Hours, e.Minutes, e.Seconds)
}

// ElapsedFor returns the time since the record was created. ok is false for
// closed records and records without a valid createdAt.
func ElapsedFor(r models.Record, now time.Time) (Elapsed, bool) {
	if !r.Status().Open() {
		return Elapsed{}, false
	}
	created, ok := r.Time("createdAt")
	if !ok {
		return Elapsed{}, false
	}
	return NewElapsed(now.Sub(created)), true
}

// recordKey identifies a record in the elapsed map: _id, else uniqueId.
func recordKey(r models.Record) string {
	if id := r.Str("_id"); id != "" {
		return id
	}
	return r.UniqueID()
}

// Durations computes the elapsed time of every open record.
func Durations(recs []models.Record, now time.Time) map[string]Elapsed {
	out := make(map[string]Elapsed)
	for _, r := range recs {
		key := recordKey(r)
		if key == "" {
			continue
		}
		if e, ok := ElapsedFor(r, now); ok {
			out[key] = e
		}
	}
	return out
}

// Tick sends the durations of recs immediately and then once per interval
// until ctx is done. A non-positive interval means one second. The channel
// is closed on return.
func Tick(ctx context.Context, recs []models.Record, interval time.Duration, clock func() time.Time) <-chan map[string]Elapsed {
	if clock == nil {
		clock = time.Now
	}
	if interval <= 0 {
		interval = time.Second
	}
	ch := make(chan map[string]Elapsed, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case ch <- Durations(recs, clock()):
			case <-ctx.Done():
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
