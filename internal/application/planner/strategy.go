package planner

import (
	"math/rand"
	"sync"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
)

// Selector picks one recipe for a (date, slot) position from a non-empty
// list of slot-eligible candidates.
type Selector func(candidates []mealplan.Recipe, date time.Time, slot mealplan.MealSlot) mealplan.Recipe

// Shuffler is the source of randomness for the default selector.
// *rand.Rand is not safe for concurrent use, so engines share a locked one.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewShuffler returns a goroutine-safe shuffler seeded with seed
func NewShuffler(seed int64) Shuffler {
	return &lockedRand{rnd: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rnd.Shuffle(n, swap)
}

// RandomSelector shuffles the candidates (Fisher-Yates) and takes the first
func RandomSelector(shuffler Shuffler) Selector {
	return func(candidates []mealplan.Recipe, _ time.Time, _ mealplan.MealSlot) mealplan.Recipe {
		shuffled := make([]mealplan.Recipe, len(candidates))
		copy(shuffled, candidates)
		shuffler.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return shuffled[0]
	}
}

// ShortestTimeSelector always prefers the quickest recipe. The same recipe may
// repeat across every day and slot; recipes without timing sort last and ties
// keep catalog order.
func ShortestTimeSelector() Selector {
	return func(candidates []mealplan.Recipe, _ time.Time, _ mealplan.MealSlot) mealplan.Recipe {
		return shortest(candidates)
	}
}

// WeeknightCapSelector restricts weeknight picks to recipes within capMinutes and
// delegates the choice to next. When nothing fits, the globally shortest
// candidate is used instead of failing. Weekend picks go straight to next.
func WeeknightCapSelector(capMinutes int, next Selector) Selector {
	return func(candidates []mealplan.Recipe, date time.Time, slot mealplan.MealSlot) mealplan.Recipe {
		if !mealplan.IsWeeknight(date) {
			return next(candidates, date, slot)
		}

		var fitting []mealplan.Recipe
		for _, r := range candidates {
			if total, known := r.TotalTime(); known && total <= capMinutes {
				fitting = append(fitting, r)
			}
		}
		if len(fitting) == 0 {
			return shortest(candidates)
		}
		return next(fitting, date, slot)
	}
}

func shortest(candidates []mealplan.Recipe) mealplan.Recipe {
	best := candidates[0]
	bestTime, bestKnown := best.TotalTime()
	for _, r := range candidates[1:] {
		total, known := r.TotalTime()
		switch {
		case !known:
			continue
		case !bestKnown || total < bestTime:
			best, bestTime, bestKnown = r, total, true
		}
	}
	return best
}
