package narrowphase

import (
	"math"

	"github.com/akmonengine/narrowphase/internal/conlog"
	"github.com/akmonengine/narrowphase/sweep"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// SweepRequest moves B of the pair from its placement along Direction (world
// space) for Length, A staying still.
type SweepRequest struct {
	Pair
	Direction mgl64.Vec3
	Length    float64
}

func (r SweepRequest) Validate() error {
	if err := r.Pair.Validate(); err != nil {
		return err
	}
	for _, f := range r.Direction {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.Wrapf(ErrInvalidSweep, "pair %s: direction %v", r.ID, r.Direction)
		}
	}
	if r.Direction.LenSqr() == 0 {
		return errors.Wrapf(ErrInvalidSweep, "pair %s: zero direction", r.ID)
	}
	if r.Length < 0 || math.IsNaN(r.Length) || math.IsInf(r.Length, 0) {
		return errors.Wrapf(ErrInvalidSweep, "pair %s: length %v", r.ID, r.Length)
	}
	return nil
}

// SweepResult is the first time of impact of a request, in world space
type SweepResult struct {
	PairID uuid.UUID
	Hit    bool
	// Time is the distance travelled at the first contact. It is minus the
	// penetration depth when the pair starts in overlap and ComputeMTD is set.
	Time float64
	// Position is the contact point on A's surface
	Position       mgl64.Vec3
	Normal         mgl64.Vec3
	InitialOverlap bool
}

// Sweep casts every request and returns the results in the order of requests
func (d *Detector) Sweep(requests []SweepRequest) ([]SweepResult, error) {
	for i, req := range requests {
		if err := req.Validate(); err != nil {
			conlog.Printf("narrowphase: rejected sweep batch: %v\n", err)
			return nil, errors.Wrapf(err, "request %d", i)
		}
	}

	results := make([]SweepResult, len(requests))
	indices := make([]int, len(requests))
	for i := range indices {
		indices[i] = i
	}

	task(max(DEFAULT_WORKERS, d.Workers), indices, func(i int) {
		results[i] = d.sweep(requests[i])
	})

	return results, nil
}

func (d *Detector) sweep(req SweepRequest) SweepResult {
	d.counters.sweeps.Add(1)

	result := sweep.Raycast(req.A, req.B, sweep.Request{
		BToA:       req.bToA(),
		Direction:  req.TransformA.InverseRotateVector(req.Direction),
		Length:     req.Length,
		Thickness:  d.Thickness,
		InitialDir: d.searchCache(req.ID).Direction,
		ComputeMTD: d.ComputeMTD,
	})
	d.storeSearchCache(req.ID, result.Cache)

	if result.Exhausted {
		d.counters.sweepsExhausted.Add(1)
		conlog.Printf("narrowphase: pair %s: sweep stopped after %d iterations\n", req.ID, result.Iterations)
	}
	if !result.Hit {
		return SweepResult{PairID: req.ID}
	}
	d.counters.sweepHits.Add(1)

	out := SweepResult{
		PairID:         req.ID,
		Hit:            true,
		Time:           result.Time,
		InitialOverlap: result.InitialOverlap,
	}
	if !result.InitialOverlap || d.ComputeMTD {
		out.Position = req.TransformA.TransformPoint(result.Position)
		out.Normal = req.TransformA.RotateVector(result.Normal)
	}
	return out
}
