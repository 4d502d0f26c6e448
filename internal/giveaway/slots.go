package giveaway

import (
	"math/rand"
	"sort"
	"time"
)

// GenerateSlots draws count instants independently and uniformly at random
// from [start, start+window) and returns them sorted ascending. It runs once,
// at campaign creation; clustering of instants in a short window is fine, the
// tick loop handles bursts of simultaneously-due slots.
func GenerateSlots(rng *rand.Rand, start time.Time, window time.Duration, count int) []time.Time {
	times := make([]time.Time, count)
	for i := range times {
		times[i] = start.Add(time.Duration(rng.Int63n(int64(window))))
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times
}
