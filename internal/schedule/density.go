// Package schedule decides how many news events a round gets and when they fire.
package schedule

import (
	"math/rand"
	"sort"
	"time"
)

// EventDensity configures news pressure for one round.
type EventDensity struct {
	MinEvents               int
	MaxEvents               int
	MinTimeBetween          time.Duration
	MaxTimeBetween          time.Duration
	ChanceOfChainedEvent    float64
	ChanceOfDelayedEvent    float64
	ChanceOfHighImpactEvent float64
}

var tiers = [...]EventDensity{
	// rounds 1-3
	{MinEvents: 1, MaxEvents: 2, MinTimeBetween: 15 * time.Second, MaxTimeBetween: 25 * time.Second,
		ChanceOfChainedEvent: 0, ChanceOfDelayedEvent: 0.1, ChanceOfHighImpactEvent: 0.1},
	// rounds 4-6
	{MinEvents: 2, MaxEvents: 3, MinTimeBetween: 10 * time.Second, MaxTimeBetween: 20 * time.Second,
		ChanceOfChainedEvent: 0.15, ChanceOfDelayedEvent: 0.2, ChanceOfHighImpactEvent: 0.2},
	// rounds 7-8
	{MinEvents: 3, MaxEvents: 4, MinTimeBetween: 8 * time.Second, MaxTimeBetween: 15 * time.Second,
		ChanceOfChainedEvent: 0.25, ChanceOfDelayedEvent: 0.3, ChanceOfHighImpactEvent: 0.35},
	// rounds 9-10
	{MinEvents: 4, MaxEvents: 6, MinTimeBetween: 5 * time.Second, MaxTimeBetween: 10 * time.Second,
		ChanceOfChainedEvent: 0.4, ChanceOfDelayedEvent: 0.4, ChanceOfHighImpactEvent: 0.5},
}

// DensityForRound returns the event density for a round.
func DensityForRound(round int) EventDensity {
	switch {
	case round <= 3:
		return tiers[0]
	case round <= 6:
		return tiers[1]
	case round <= 8:
		return tiers[2]
	default:
		return tiers[3]
	}
}

// EventCount draws how many events a round gets.
func EventCount(d EventDensity, rng *rand.Rand) int {
	if d.MaxEvents <= d.MinEvents {
		return d.MinEvents
	}
	return d.MinEvents + rng.Intn(d.MaxEvents-d.MinEvents+1)
}

// ShouldBeChainedEvent draws whether an event spawns a follow-up.
func ShouldBeChainedEvent(d EventDensity, rng *rand.Rand) bool {
	return rng.Float64() < d.ChanceOfChainedEvent
}

// ShouldBeDelayedEvent draws whether an event fires later than scheduled.
func ShouldBeDelayedEvent(d EventDensity, rng *rand.Rand) bool {
	return rng.Float64() < d.ChanceOfDelayedEvent
}

// ShouldBeHighImpactEvent draws whether an event uses high-impact news.
func ShouldBeHighImpactEvent(d EventDensity, rng *rand.Rand) bool {
	return rng.Float64() < d.ChanceOfHighImpactEvent
}

// DelayFor draws the extra wait applied to a delayed event.
func DelayFor(d EventDensity, rng *rand.Rand) time.Duration {
	lo := d.MinTimeBetween / 4
	hi := d.MinTimeBetween / 2
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rng.Int63n(int64(hi-lo)+1))
}

const (
	HeadBuffer = 2 * time.Second
	TailBuffer = 3 * time.Second

	cliffhangerThreshold = 0.3
	cliffhangerChance    = 0.5
	cliffhangerLead      = time.Second
)

// Slot is a scheduled news event, as an offset from round start.
type Slot struct {
	Offset      time.Duration
	Cliffhanger bool
}

// ScheduleRoundEvents spreads count events over the round.
//
// The first HeadBuffer and last TailBuffer of the round stay quiet. Rounds with
// a high-impact chance above 0.3 may spend one slot on a cliffhanger just
// before the tail buffer. The rest are spaced evenly with jitter that grows
// with the high-impact chance. Slots are sorted by offset.
func ScheduleRoundEvents(count int, roundDuration time.Duration, d EventDensity, rng *rand.Rand) []Slot {
	if count <= 0 {
		return nil
	}

	lo := HeadBuffer
	hi := roundDuration - TailBuffer
	if hi < lo {
		hi = lo
	}
	clamp := func(t time.Duration) time.Duration {
		if t < lo {
			return lo
		}
		if t > hi {
			return hi
		}
		return t
	}

	slots := make([]Slot, 0, count)
	remaining := count

	if d.ChanceOfHighImpactEvent > cliffhangerThreshold && rng.Float64() < cliffhangerChance {
		slots = append(slots, Slot{Offset: clamp(hi - cliffhangerLead), Cliffhanger: true})
		remaining--
	}

	window := hi - lo
	spacing := window / time.Duration(remaining+1)
	jitter := float64(spacing) / 2 * d.ChanceOfHighImpactEvent
	for i := 0; i < remaining; i++ {
		base := lo + spacing*time.Duration(i+1)
		offset := base + time.Duration((rng.Float64()*2-1)*jitter)
		slots = append(slots, Slot{Offset: clamp(offset)})
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Offset < slots[j].Offset
	})
	return slots
}
