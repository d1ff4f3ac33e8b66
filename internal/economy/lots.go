// Package economy holds the pure trading math: the perishable lot ledger,
// price formulas and equipment effect resolution. Nothing here touches the
// game state directly; the engine feeds it inputs and applies the results.
package economy

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/talgya/lobster-tycoon/internal/config"
)

// Lot is one purchased batch of a single grade, aging on its own clock.
type Lot struct {
	ID          string       `json:"id"`
	Grade       config.Grade `json:"grade"`
	Amount      int          `json:"amount"`
	Freshness   float64      `json:"freshness"`  // 0–100
	DecayRate   float64      `json:"decay_rate"` // freshness points lost per day
	DayAcquired int          `json:"day_acquired"`
}

// Portion is the part of a lot consumed by a removal.
type Portion struct {
	LotID     string       `json:"lot_id"`
	Grade     config.Grade `json:"grade"`
	Amount    int          `json:"amount"`
	Freshness float64      `json:"freshness"`
}

// Ledger tracks stock as lots plus a per-grade total cache.
// Every mutation keeps Inventory[g] equal to the sum of lot amounts of g.
type Ledger struct {
	Lots      []Lot                `json:"lots"`
	Inventory map[config.Grade]int `json:"inventory"`
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{Inventory: make(map[config.Grade]int)}
}

// AddLot appends a new lot and bumps the grade cache. Non-positive amounts
// are ignored.
func (l *Ledger) AddLot(id string, grade config.Grade, amount int, freshness, decayRate float64, day int) {
	if amount <= 0 {
		return
	}
	if l.Inventory == nil {
		l.Inventory = make(map[config.Grade]int)
	}
	l.Lots = append(l.Lots, Lot{
		ID:          id,
		Grade:       grade,
		Amount:      amount,
		Freshness:   Clamp(freshness, 0, 100),
		DecayRate:   decayRate,
		DayAcquired: day,
	})
	l.Inventory[grade] += amount
}

// RemoveLotAmount consumes up to amount of grade, oldest lots first, and
// returns what was taken from each lot.
func (l *Ledger) RemoveLotAmount(grade config.Grade, amount int) []Portion {
	if amount <= 0 {
		return nil
	}

	order := l.fifoIndexes(grade)
	var taken []Portion
	remaining := amount
	for _, i := range order {
		if remaining == 0 {
			break
		}
		lot := &l.Lots[i]
		n := min(lot.Amount, remaining)
		if n <= 0 {
			continue
		}
		lot.Amount -= n
		remaining -= n
		taken = append(taken, Portion{LotID: lot.ID, Grade: grade, Amount: n, Freshness: lot.Freshness})
	}

	l.decrement(grade, amount-remaining)
	l.prune()
	return taken
}

// fifoIndexes returns the indexes of grade's lots, oldest acquisition first.
// Lots acquired on the same day keep insertion order.
func (l *Ledger) fifoIndexes(grade config.Grade) []int {
	var idx []int
	for i, lot := range l.Lots {
		if lot.Grade == grade {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return l.Lots[idx[a]].DayAcquired < l.Lots[idx[b]].DayAcquired
	})
	return idx
}

func (l *Ledger) decrement(grade config.Grade, n int) {
	if n <= 0 {
		return
	}
	l.Inventory[grade] = max(0, l.Inventory[grade]-n)
}

func (l *Ledger) prune() {
	kept := l.Lots[:0]
	for _, lot := range l.Lots {
		if lot.Amount > 0 {
			kept = append(kept, lot)
		}
	}
	l.Lots = kept
}

// DecayParams are the tank conditions for one day of aging.
type DecayParams struct {
	BaseMortality     float64 // fraction of a fresh lot lost per day
	DecayMod          float64 // multiplies each lot's own decay rate
	MortalityScale    float64 // extra mortality multiple at zero freshness
	CriticalFreshness float64 // at or below this, lots also rot
	RotFraction       float64
}

// DecayReport totals one day of losses by grade.
type DecayReport struct {
	Mortality map[config.Grade]int `json:"mortality"`
	Rot       map[config.Grade]int `json:"rot"`
}

// Lost returns the day's total loss across grades.
func (r DecayReport) Lost() int {
	total := 0
	for _, n := range r.Mortality {
		total += n
	}
	for _, n := range r.Rot {
		total += n
	}
	return total
}

// ProcessDailyDecay ages every lot by one day. Freshness drops by the lot's
// decay rate, mortality scales up as freshness falls, and lots at or below
// the critical freshness also lose a flat rot fraction on top.
func (l *Ledger) ProcessDailyDecay(p DecayParams) DecayReport {
	report := DecayReport{
		Mortality: make(map[config.Grade]int),
		Rot:       make(map[config.Grade]int),
	}
	decayMod := p.DecayMod
	if decayMod <= 0 {
		decayMod = 1
	}

	for i := range l.Lots {
		lot := &l.Lots[i]
		lot.Freshness = Clamp(lot.Freshness-lot.DecayRate*decayMod, 0, 100)

		rate := p.BaseMortality * (1 + p.MortalityScale*(1-lot.Freshness/100))
		dead := int(math.Floor(float64(lot.Amount) * rate))
		dead = Clamp(dead, 0, lot.Amount)
		lot.Amount -= dead
		report.Mortality[lot.Grade] += dead
		l.decrement(lot.Grade, dead)

		if lot.Freshness <= p.CriticalFreshness {
			rot := int(math.Floor(float64(lot.Amount) * p.RotFraction))
			rot = Clamp(rot, 0, lot.Amount)
			lot.Amount -= rot
			report.Rot[lot.Grade] += rot
			l.decrement(lot.Grade, rot)
		}
	}
	l.prune()
	return report
}

// ShrinkAll removes floor(amount × fraction) from every lot and returns the
// total removed.
func (l *Ledger) ShrinkAll(fraction float64) int {
	lost := 0
	for i := range l.Lots {
		lot := &l.Lots[i]
		n := Clamp(int(math.Floor(float64(lot.Amount)*fraction)), 0, lot.Amount)
		lot.Amount -= n
		l.decrement(lot.Grade, n)
		lost += n
	}
	l.prune()
	return lost
}

// Spoil knocks delta freshness points off every lot.
func (l *Ledger) Spoil(delta float64) {
	if delta <= 0 {
		return
	}
	for i := range l.Lots {
		l.Lots[i].Freshness = Clamp(l.Lots[i].Freshness-delta, 0, 100)
	}
}

// Total returns the pounds held across all grades.
func (l *Ledger) Total() int {
	total := 0
	for _, n := range l.Inventory {
		total += n
	}
	return total
}

// Amount returns the pounds held of one grade.
func (l *Ledger) Amount(grade config.Grade) int {
	return l.Inventory[grade]
}

// AverageFreshness returns the amount-weighted mean freshness of the given
// grades, or of all stock when none are given. Zero when nothing matches.
func (l *Ledger) AverageFreshness(grades ...config.Grade) float64 {
	want := func(g config.Grade) bool {
		if len(grades) == 0 {
			return true
		}
		for _, x := range grades {
			if x == g {
				return true
			}
		}
		return false
	}

	weighted, total := 0.0, 0
	for _, lot := range l.Lots {
		if !want(lot.Grade) || lot.Amount <= 0 {
			continue
		}
		weighted += lot.Freshness * float64(lot.Amount)
		total += lot.Amount
	}
	if total == 0 {
		return 0
	}
	return weighted / float64(total)
}

// ErrLedgerCorrupt marks a broken ledger invariant.
var ErrLedgerCorrupt = errors.New("lot ledger invariant violated")

// Verify checks the ledger invariants: non-negative lots, freshness in range,
// and the grade cache equal to the lot sums.
func (l *Ledger) Verify() error {
	sums := make(map[config.Grade]int)
	for _, lot := range l.Lots {
		if lot.Amount < 0 {
			return fmt.Errorf("%w: lot %s has amount %d", ErrLedgerCorrupt, lot.ID, lot.Amount)
		}
		if lot.Freshness < 0 || lot.Freshness > 100 {
			return fmt.Errorf("%w: lot %s has freshness %.2f", ErrLedgerCorrupt, lot.ID, lot.Freshness)
		}
		sums[lot.Grade] += lot.Amount
	}
	for grade, n := range l.Inventory {
		if n < 0 {
			return fmt.Errorf("%w: %s cache is %d", ErrLedgerCorrupt, grade, n)
		}
		if sums[grade] != n {
			return fmt.Errorf("%w: %s cache %d != lots %d", ErrLedgerCorrupt, grade, n, sums[grade])
		}
	}
	for grade, n := range sums {
		if l.Inventory[grade] != n {
			return fmt.Errorf("%w: %s lots %d missing from cache", ErrLedgerCorrupt, grade, n)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		Lots:      append([]Lot(nil), l.Lots...),
		Inventory: make(map[config.Grade]int, len(l.Inventory)),
	}
	for g, n := range l.Inventory {
		c.Inventory[g] = n
	}
	return c
}
