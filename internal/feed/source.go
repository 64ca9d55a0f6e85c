package feed

import (
	"sort"

	"lightning/internal/market"
)

// Loader supplies one instrument-day of ticks. Implementations must
// tolerate being asked for days or codes they do not have (return an
// empty slice, not an error).
type Loader interface {
	LoadTicks(code string, day uint32) ([]market.Tick, error)
}

// SortTicks orders ticks by (time, sub-second sequence, code), the
// replay order the matching engine requires.
func SortTicks(ticks []market.Tick) {
	sort.SliceStable(ticks, func(i, j int) bool {
		a, b := &ticks[i], &ticks[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		return a.Code < b.Code
	})
}

type memoryKey struct {
	code string
	day  uint32
}

// MemoryLoader serves ticks held in memory. Used by tests and paper
// sessions.
type MemoryLoader struct {
	ticks map[memoryKey][]market.Tick
}

// NewMemoryLoader creates an empty in-memory loader.
func NewMemoryLoader() *MemoryLoader {
	return &MemoryLoader{ticks: make(map[memoryKey][]market.Tick)}
}

// Add appends ticks under their own code and trading day.
func (l *MemoryLoader) Add(ticks ...market.Tick) {
	for _, t := range ticks {
		key := memoryKey{code: t.Code, day: t.TradingDay}
		l.ticks[key] = append(l.ticks[key], t)
	}
}

// LoadTicks returns a copy of the stored ticks for one instrument-day.
func (l *MemoryLoader) LoadTicks(code string, day uint32) ([]market.Tick, error) {
	stored := l.ticks[memoryKey{code: code, day: day}]
	out := make([]market.Tick, len(stored))
	copy(out, stored)
	return out, nil
}
