package rate

import "github.com/san-kum/ratetune/internal/autotune"

// Bank holds the live per-axis gains in firmware decimal units. Writes mark
// a pending reload instead of recomputing controller coefficients inline,
// so a gain push lands between control-loop iterations, never inside one.
type Bank struct {
	gains         autotune.GainSet
	reloadPending bool
}

func NewBank(gains autotune.GainSet) *Bank {
	return &Bank{gains: gains, reloadPending: true}
}

func (b *Bank) Gains(axis autotune.Axis) autotune.Gains {
	return b.gains[axis]
}

// Apply replaces all axes' gains and schedules a reload.
func (b *Bank) Apply(gains autotune.GainSet) {
	b.gains = gains
	b.reloadPending = true
}

// TakeReload reports and clears the pending-reload flag.
func (b *Bank) TakeReload() bool {
	pending := b.reloadPending
	b.reloadPending = false
	return pending
}
