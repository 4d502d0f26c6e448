package giveaway

import "github.com/randy-tg/randybot/internal/domain"

// pick selects one candidate uniformly at random. Selection is deliberately
// unweighted: every eligible user has equal probability. The rand source is
// shared across overlapping ticks, hence the lock.
func (e *Engine) pick(candidates []domain.User) (domain.User, bool) {
	if len(candidates) == 0 {
		return domain.User{}, false
	}
	e.mu.Lock()
	i := e.rng.Intn(len(candidates))
	e.mu.Unlock()
	return candidates[i], true
}
