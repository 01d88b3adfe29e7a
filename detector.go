// Package narrowphase runs batches of convex pair queries over a pool of workers.
//
// Each Detect call pushes its pairs through three channel stages: a world space
// bounds prefilter, a GJK intersection test and an EPA penetration query. Sweep
// fans directed casts out the same way. GJK search directions are cached per
// pair ID between calls, and contact changes are reported through Events.
package narrowphase

import (
	"cmp"
	"slices"
	"sync"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/epa"
	"github.com/akmonengine/narrowphase/gjk"
	"github.com/akmonengine/narrowphase/internal/conlog"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const DEFAULT_WORKERS = 1

// Contact is a penetrating pair, in world space
type Contact struct {
	PairID      uuid.UUID
	Penetration float64
	// PointA lies on A's surface, PointB on B's
	PointA mgl64.Vec3
	PointB mgl64.Vec3
	// Normal points from A toward B: moving B by Normal*Penetration separates the pair
	Normal  mgl64.Vec3
	VertexA int
	VertexB int
}

type Detector struct {
	Workers int
	// Thickness inflates B in every query
	Thickness float64
	// Epsilon is the GJK overlap tolerance, gjk.DefaultEpsilon when zero
	Epsilon float64
	// ComputeMTD asks sweeps that start in overlap for the penetration depth
	ComputeMTD bool

	Events Events

	mu       sync.Mutex
	caches   map[uuid.UUID]gjk.SearchCache
	counters counters
}

func NewDetector(workers int) *Detector {
	return &Detector{
		Workers: workers,
		Events:  NewEvents(),
		caches:  make(map[uuid.UUID]gjk.SearchCache),
	}
}

// candidate is a pair that went through a stage, with its position in the batch
type candidate struct {
	index int
	pair  Pair
	bToA  actor.Transform
}

type indexedContact struct {
	index   int
	contact Contact
}

// Detect returns the contacts of all penetrating pairs, in the order of pairs,
// then flushes the contact events. Detect and Sweep must not run concurrently
// on the same Detector.
func (d *Detector) Detect(pairs []Pair) ([]Contact, error) {
	for i, pair := range pairs {
		if err := pair.Validate(); err != nil {
			conlog.Printf("narrowphase: rejected batch: %v\n", err)
			return nil, errors.Wrapf(err, "pair %d", i)
		}
	}

	workersCount := max(DEFAULT_WORKERS, d.Workers)
	d.counters.pairs.Add(uint64(len(pairs)))

	candidates := d.boundsStage(pairs, workersCount)
	intersecting := d.intersectStage(candidates, workersCount)
	hits := d.penetrationStage(intersecting, workersCount)

	indexed := make([]indexedContact, 0)
	for hit := range hits {
		indexed = append(indexed, hit)
	}
	slices.SortFunc(indexed, func(a, b indexedContact) int {
		return cmp.Compare(a.index, b.index)
	})

	contacts := make([]Contact, len(indexed))
	for i, hit := range indexed {
		contacts[i] = hit.contact
	}
	d.counters.contacts.Add(uint64(len(contacts)))

	d.Events.recordContacts(contacts)
	d.Events.flush()

	return contacts, nil
}

// boundsStage drops the pairs whose world bounds are apart
func (d *Detector) boundsStage(pairs []Pair, workersCount int) <-chan candidate {
	ch := make(chan candidate, workersCount)

	go func() {
		defer close(ch)

		for i, pair := range pairs {
			boundsA, boundsB := pair.worldBounds(d.Thickness)
			if !boundsA.Overlaps(boundsB) {
				d.counters.boundsRejected.Add(1)
				continue
			}
			ch <- candidate{index: i, pair: pair, bToA: pair.bToA()}
		}
	}()

	return ch
}

func (d *Detector) intersectStage(in <-chan candidate, workersCount int) <-chan candidate {
	ch := make(chan candidate, workersCount)

	go func() {
		var wg sync.WaitGroup
		defer close(ch)

		for i := 0; i < workersCount; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				for c := range in {
					initialDir := d.searchCache(c.pair.ID).Direction
					if gjk.Intersects(c.pair.A, c.pair.B, c.bToA, d.Thickness, initialDir) {
						d.counters.intersecting.Add(1)
						ch <- c
					}
				}
			}()
		}
		wg.Wait()
	}()

	return ch
}

func (d *Detector) penetrationStage(in <-chan candidate, workersCount int) <-chan indexedContact {
	ch := make(chan indexedContact, workersCount)

	go func() {
		var wg sync.WaitGroup
		defer close(ch)

		for i := 0; i < workersCount; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				for c := range in {
					initialDir := d.searchCache(c.pair.ID).Direction
					contact, ok := epa.Penetration(c.pair.A, c.pair.B, c.bToA, 0, d.Thickness, initialDir, d.epsilon())
					d.storeSearchCache(c.pair.ID, contact.Cache)

					if contact.Exhausted {
						d.counters.exhausted.Add(1)
						conlog.Printf("narrowphase: pair %s: penetration stopped on an iteration limit (depth %g)\n", c.pair.ID, contact.Penetration)
					}
					if contact.Degenerate {
						d.counters.degenerate.Add(1)
					}
					if !ok {
						continue
					}

					ch <- indexedContact{index: c.index, contact: worldContact(c.pair, contact)}
				}
			}()
		}
		wg.Wait()
	}()

	return ch
}

// worldContact moves a contact from A's local space to world space
func worldContact(pair Pair, contact epa.Contact) Contact {
	return Contact{
		PairID:      pair.ID,
		Penetration: contact.Penetration,
		PointA:      pair.TransformA.TransformPoint(contact.ClosestA),
		PointB:      pair.TransformA.TransformPoint(contact.ClosestB),
		Normal:      pair.TransformA.RotateVector(contact.Normal),
		VertexA:     contact.VertexA,
		VertexB:     contact.VertexB,
	}
}

func (d *Detector) epsilon() float64 {
	if d.Epsilon > 0 {
		return d.Epsilon
	}
	return gjk.DefaultEpsilon
}

func (d *Detector) searchCache(id uuid.UUID) gjk.SearchCache {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.caches[id]
}

func (d *Detector) storeSearchCache(id uuid.UUID, cache gjk.SearchCache) {
	if cache.Direction.LenSqr() == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.caches == nil {
		d.caches = make(map[uuid.UUID]gjk.SearchCache)
	}
	d.caches[id] = cache
}

// Forget drops everything the detector remembers about a pair: its search cache
// and its contact state. A forgotten pair in contact does not get an exit event.
func (d *Detector) Forget(id uuid.UUID) {
	d.mu.Lock()
	delete(d.caches, id)
	d.mu.Unlock()

	d.Events.forget(id)
}
