// Package sttimer implements the polled 100ms timer wheel (§4.2,
// component C2). Timers are plain counters driven by the scheduler's tick,
// not a priority queue: with a fixed 100ms tick and only a handful of
// timers per instance, an array of counters is strictly simpler and O(1)
// per tick per timer.
package sttimer

// TicksPerSecond is the scheduler's tick rate: one tick every 100ms.
const TicksPerSecond = 10

// Seconds converts a whole-second duration into tick units.
func Seconds(s int) uint32 {
	if s < 0 {
		return 0
	}
	return uint32(s) * TicksPerSecond
}

// Timer is a single polled timer: active plus a 31-bit tick counter, per
// §3's Timer record. The value field intentionally overflows into
// only 31 bits' worth of range in practice (tick counts never approach
// 2^31 in this protocol), so a plain uint32 is used for simplicity.
type Timer struct {
	active bool
	value  uint32
}

// Start arms the timer at the given initial tick value (usually 0, or a
// message age carried in from a received BPDU).
func (t *Timer) Start(v uint32) {
	t.active = true
	t.value = v
}

// Stop disarms the timer.
func (t *Timer) Stop() {
	t.active = false
	t.value = 0
}

// Active reports whether the timer is currently running.
func (t *Timer) Active() bool { return t.active }

// Value returns the current tick count (0 if inactive).
func (t *Timer) Value() uint32 { return t.value }

// Expired advances the timer by one tick and reports whether it has now
// reached limitTicks. An inactive timer never expires. On expiry the timer
// is stopped, matching the C2 contract: "if inactive -> false; else
// increments value and, if value >= limitTicks, stops the timer and
// returns true."
func (t *Timer) Expired(limitTicks uint32) bool {
	if !t.active {
		return false
	}
	t.value++
	if t.value >= limitTicks {
		t.Stop()
		return true
	}
	return false
}
