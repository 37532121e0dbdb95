// Package sim ties entity storage, the gravity integrator and the
// simulation clock together into a [World].
//
// A tick is run to completion on the calling goroutine:
//
//	w := sim.NewWorld(64)
//	report := w.Tick(16 * time.Millisecond)
//
// [World.Tick] advances the [Clock], integrates every body without a parent
// and then recomputes world transforms down each parent chain.
package sim
