package narrowphase

import "sync/atomic"

// Stats counts what the detector did since it was created or last reset
type Stats struct {
	Pairs          uint64
	BoundsRejected uint64
	Intersecting   uint64
	Contacts       uint64
	// Exhausted counts penetration queries stopped on an iteration or capacity limit
	Exhausted uint64
	// Degenerate counts penetrations taken from a flat Minkowski difference
	Degenerate      uint64
	Sweeps          uint64
	SweepHits       uint64
	SweepsExhausted uint64
}

type counters struct {
	pairs           atomic.Uint64
	boundsRejected  atomic.Uint64
	intersecting    atomic.Uint64
	contacts        atomic.Uint64
	exhausted       atomic.Uint64
	degenerate      atomic.Uint64
	sweeps          atomic.Uint64
	sweepHits       atomic.Uint64
	sweepsExhausted atomic.Uint64
}

func (c *counters) all() []*atomic.Uint64 {
	return []*atomic.Uint64{
		&c.pairs, &c.boundsRejected, &c.intersecting, &c.contacts,
		&c.exhausted, &c.degenerate,
		&c.sweeps, &c.sweepHits, &c.sweepsExhausted,
	}
}

func (d *Detector) Stats() Stats {
	c := &d.counters
	return Stats{
		Pairs:           c.pairs.Load(),
		BoundsRejected:  c.boundsRejected.Load(),
		Intersecting:    c.intersecting.Load(),
		Contacts:        c.contacts.Load(),
		Exhausted:       c.exhausted.Load(),
		Degenerate:      c.degenerate.Load(),
		Sweeps:          c.sweeps.Load(),
		SweepHits:       c.sweepHits.Load(),
		SweepsExhausted: c.sweepsExhausted.Load(),
	}
}

func (d *Detector) ResetStats() {
	for _, counter := range d.counters.all() {
		counter.Store(0)
	}
}
