package schedule

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDensityForRound_Tiers(t *testing.T) {
	cases := []struct {
		round int
		tier  int
	}{
		{0, 0}, {1, 0}, {3, 0},
		{4, 1}, {6, 1},
		{7, 2}, {8, 2},
		{9, 3}, {10, 3}, {11, 3},
	}
	for _, c := range cases {
		assert.Equal(t, tiers[c.tier], DensityForRound(c.round), "round %d", c.round)
	}
}

func TestDensityForRound_Endpoints(t *testing.T) {
	first := DensityForRound(1)
	assert.Equal(t, 1, first.MinEvents)
	assert.Equal(t, 0.0, first.ChanceOfChainedEvent)

	last := DensityForRound(10)
	assert.Equal(t, 4, last.MinEvents)
	assert.Equal(t, 0.4, last.ChanceOfChainedEvent)
}

func TestDensityForRound_Escalates(t *testing.T) {
	prev := DensityForRound(1)
	for round := 2; round <= 10; round++ {
		d := DensityForRound(round)
		assert.GreaterOrEqual(t, d.MinEvents, prev.MinEvents)
		assert.GreaterOrEqual(t, d.ChanceOfChainedEvent, prev.ChanceOfChainedEvent)
		assert.GreaterOrEqual(t, d.ChanceOfDelayedEvent, prev.ChanceOfDelayedEvent)
		assert.GreaterOrEqual(t, d.ChanceOfHighImpactEvent, prev.ChanceOfHighImpactEvent)
		assert.LessOrEqual(t, d.MinTimeBetween, prev.MinTimeBetween)
		prev = d
	}
}

func TestEventCount_InRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 1; round <= 10; round++ {
		d := DensityForRound(round)
		seen := map[int]bool{}
		for i := 0; i < 200; i++ {
			n := EventCount(d, rng)
			require.GreaterOrEqual(t, n, d.MinEvents)
			require.LessOrEqual(t, n, d.MaxEvents)
			seen[n] = true
		}
		assert.Len(t, seen, d.MaxEvents-d.MinEvents+1, "round %d", round)
	}
}

func TestBernoulliDraws_ZeroChanceNeverFires(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	d := EventDensity{}
	for i := 0; i < 100; i++ {
		assert.False(t, ShouldBeChainedEvent(d, rng))
		assert.False(t, ShouldBeDelayedEvent(d, rng))
		assert.False(t, ShouldBeHighImpactEvent(d, rng))
	}
}

func TestBernoulliDraws_CertainChanceAlwaysFires(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	d := EventDensity{ChanceOfChainedEvent: 1, ChanceOfDelayedEvent: 1, ChanceOfHighImpactEvent: 1}
	for i := 0; i < 100; i++ {
		assert.True(t, ShouldBeChainedEvent(d, rng))
		assert.True(t, ShouldBeDelayedEvent(d, rng))
		assert.True(t, ShouldBeHighImpactEvent(d, rng))
	}
}

func TestDelayFor_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	d := DensityForRound(5)
	for i := 0; i < 500; i++ {
		delay := DelayFor(d, rng)
		require.GreaterOrEqual(t, delay, d.MinTimeBetween/4)
		require.LessOrEqual(t, delay, d.MinTimeBetween/2)
	}
}

func TestScheduleRoundEvents_SortedWithinBuffers(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	round := 60 * time.Second
	for r := 1; r <= 10; r++ {
		d := DensityForRound(r)
		for i := 0; i < 50; i++ {
			count := EventCount(d, rng)
			slots := ScheduleRoundEvents(count, round, d, rng)
			require.Len(t, slots, count)
			for j, s := range slots {
				require.GreaterOrEqual(t, s.Offset, HeadBuffer)
				require.LessOrEqual(t, s.Offset, round-TailBuffer)
				if j > 0 {
					require.GreaterOrEqual(t, s.Offset, slots[j-1].Offset)
				}
			}
		}
	}
}

func TestScheduleRoundEvents_NoJitterIsEven(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	d := EventDensity{}
	slots := ScheduleRoundEvents(3, 22*time.Second, d, rng)
	require.Len(t, slots, 3)
	// usable window 2s..19s, spacing 17s/4
	spacing := 17 * time.Second / 4
	for i, s := range slots {
		assert.Equal(t, HeadBuffer+spacing*time.Duration(i+1), s.Offset)
		assert.False(t, s.Cliffhanger)
	}
}

func TestScheduleRoundEvents_Cliffhanger(t *testing.T) {
	d := EventDensity{ChanceOfHighImpactEvent: 0.5}
	round := 60 * time.Second
	found := false
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		slots := ScheduleRoundEvents(4, round, d, rng)
		for _, s := range slots {
			if s.Cliffhanger {
				found = true
				assert.Equal(t, round-TailBuffer-time.Second, s.Offset)
			}
		}
	}
	assert.True(t, found, "expected at least one cliffhanger across 50 rounds")
}

func TestScheduleRoundEvents_LowImpactNeverCliffhangs(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	d := DensityForRound(1)
	for i := 0; i < 100; i++ {
		for _, s := range ScheduleRoundEvents(2, 60*time.Second, d, rng) {
			assert.False(t, s.Cliffhanger)
		}
	}
}

func TestScheduleRoundEvents_Empty(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	assert.Nil(t, ScheduleRoundEvents(0, time.Minute, DensityForRound(1), rng))
}
