/*
ledger.go - Overtime debt ledger

PURPOSE:
  Tracks unresolved positive overtime per origin month while the engine
  replays history. A DebtLedger is created by one replay and discarded with
  it; nothing here is shared between calls or persisted.

LIFECYCLE OF A DEBT:
  1. Month M closes with monthOS > 0: debt {origin: M, remaining: monthOS}
  2. CS entered in M+3 clears it first, CS left over in M+4 clears it second
  3. A debt whose remaining reaches 0 is pruned
  4. At M+4 the original monthOS is written off the running total whether
     or not CS cleared it (see Engine)

CS APPLICATION ORDER:
  CS entered in month N goes to the debt from N-3, then to the debt from N-4.
  Nothing else can receive it. Minutes beyond what those two debts hold are
  dropped: they are not banked for later months or older debts.
*/
package overtime

import "github.com/warp/pontaj/generic"

const (
	// CSPrimaryLag is the age in months of the debt CS clears first.
	CSPrimaryLag = 3

	// WriteOffLag is the age in months at which overtime leaves the running
	// total. It is also the debt CS clears second.
	WriteOffLag = 4
)

// Debt is one month's uncompensated overtime.
type Debt struct {
	Origin    generic.Month
	Remaining generic.Minutes
}

// DebtLedger holds the open debts of a single replay.
type DebtLedger struct {
	debts    []*Debt
	original map[generic.Month]generic.Minutes
}

func NewDebtLedger() *DebtLedger {
	return &DebtLedger{original: make(map[generic.Month]generic.Minutes)}
}

// Open records month's net overtime. Zero or negative overtime opens nothing.
func (l *DebtLedger) Open(origin generic.Month, monthOS generic.Minutes) {
	if !monthOS.IsPositive() {
		return
	}
	l.debts = append(l.debts, &Debt{Origin: origin, Remaining: monthOS})
	l.original[origin] = monthOS
}

// ApplyCS spends cs minutes entered in month at against the debts from
// at-3 and then at-4. It returns the minutes actually applied.
func (l *DebtLedger) ApplyCS(at generic.Month, cs generic.Minutes) generic.Minutes {
	applied := generic.ZeroMinutes()
	left := cs
	for _, lag := range []int{CSPrimaryLag, WriteOffLag} {
		if !left.IsPositive() {
			break
		}
		debt := l.find(at.AddMonths(-lag))
		if debt == nil || !debt.Remaining.IsPositive() {
			continue
		}
		take := left.Min(debt.Remaining)
		debt.Remaining = debt.Remaining.Sub(take)
		left = left.Sub(take)
		applied = applied.Add(take)
	}
	return applied
}

// Prune drops debts that are fully cleared.
func (l *DebtLedger) Prune() {
	open := l.debts[:0]
	for _, d := range l.debts {
		if d.Remaining.IsPositive() {
			open = append(open, d)
		}
	}
	l.debts = open
}

// Remaining is the open balance of the debt from origin, 0 when none is open.
func (l *DebtLedger) Remaining(origin generic.Month) generic.Minutes {
	if d := l.find(origin); d != nil {
		return d.Remaining
	}
	return generic.ZeroMinutes()
}

// OriginalOS is the overtime origin opened with, before any clearing.
func (l *DebtLedger) OriginalOS(origin generic.Month) generic.Minutes {
	if m, ok := l.original[origin]; ok {
		return m
	}
	return generic.ZeroMinutes()
}

// Open debts in origin order.
func (l *DebtLedger) Debts() []Debt {
	out := make([]Debt, 0, len(l.debts))
	for _, d := range l.debts {
		out = append(out, *d)
	}
	return out
}

func (l *DebtLedger) find(origin generic.Month) *Debt {
	for _, d := range l.debts {
		if d.Origin == origin {
			return d
		}
	}
	return nil
}
