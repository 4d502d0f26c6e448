package giveaway

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randy-tg/randybot/internal/domain"
)

func TestPickEmptySet(t *testing.T) {
	e := newTestEngine(newMemStore(), newMemDirectory(), newMemSettings(), newRecordingNotifier())
	_, ok := e.pick(nil)
	assert.False(t, ok)
	_, ok = e.pick([]domain.User{})
	assert.False(t, ok)
}

func TestPickSingleCandidate(t *testing.T) {
	e := newTestEngine(newMemStore(), newMemDirectory(), newMemSettings(), newRecordingNotifier())
	u, ok := e.pick([]domain.User{{ID: 3}})
	require.True(t, ok)
	assert.Equal(t, int64(3), u.ID)
}

func TestPickIsRoughlyUniform(t *testing.T) {
	e := New(Deps{
		Campaigns: newMemStore(),
		Slots:     newMemStore(),
		Directory: newMemDirectory(),
		Settings:  newMemSettings(),
		Notifier:  newRecordingNotifier(),
		Location:  time.UTC,
		Rand:      rand.New(rand.NewSource(42)),
	})

	candidates := make([]domain.User, 4)
	for i := range candidates {
		candidates[i] = domain.User{ID: int64(i + 1)}
	}

	const draws = 4000
	counts := make(map[int64]int)
	for i := 0; i < draws; i++ {
		u, ok := e.pick(candidates)
		require.True(t, ok)
		counts[u.ID]++
	}

	// Every candidate is drawn, and no one dominates. Loose bounds keep the
	// test stable across rand implementations.
	for id := int64(1); id <= 4; id++ {
		assert.Greater(t, counts[id], draws/8, "candidate %d starved", id)
		assert.Less(t, counts[id], draws/2, "candidate %d dominates", id)
	}
}
