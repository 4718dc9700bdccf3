// Package generator synthesises contact record datasets for seeding the data
// service and for load experiments against the engine.
package generator

import (
	"context"
	"math/rand"
	"time"

	"github.com/liyue/tracemap/internal/domain"
)

// Generator produces synthetic contact records aligned with the data service
// schema.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumUsers <= 1 {
		cfg.NumUsers = def.NumUsers
	}
	if cfg.NumContacts <= 0 {
		cfg.NumContacts = def.NumContacts
	}
	if cfg.IndirectChance <= 0 {
		cfg.IndirectChance = def.IndirectChance
	}
	if cfg.RepeatChance <= 0 {
		cfg.RepeatChance = def.RepeatChance
	}
	if cfg.MaxRunLength <= 1 {
		cfg.MaxRunLength = def.MaxRunLength
	}
	if cfg.StartTimestamp <= 0 {
		cfg.StartTimestamp = def.StartTimestamp
	}
	if cfg.TimestampSpan <= 0 {
		cfg.TimestampSpan = def.TimestampSpan
	}
	if cfg.MinLat == 0 && cfg.MaxLat == 0 {
		cfg.MinLat, cfg.MaxLat = def.MinLat, def.MaxLat
	}
	if cfg.MinLng == 0 && cfg.MaxLng == 0 {
		cfg.MinLng, cfg.MaxLng = def.MinLng, def.MaxLng
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Generate synthesises contact records. It respects context cancellation.
// Encounters repeat at consecutive timestamps with RepeatChance so the
// resulting dataset exercises contiguous-period merging downstream.
func (g *Generator) Generate(ctx context.Context) ([]domain.ContactRecord, error) {
	records := make([]domain.ContactRecord, 0, g.cfg.NumContacts)

	for len(records) < g.cfg.NumContacts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id1, id2 := g.randomPair()
		timestamp := g.cfg.StartTimestamp + g.rand.Int63n(g.cfg.TimestampSpan)

		var through *int
		if g.rand.Float64() < g.cfg.IndirectChance {
			through = g.randomIntermediary(id1, id2)
		}

		run := 1
		if g.rand.Float64() < g.cfg.RepeatChance {
			run += g.rand.Intn(g.cfg.MaxRunLength - 1)
		}

		for step := 0; step < run && len(records) < g.cfg.NumContacts; step++ {
			rec := domain.ContactRecord{
				ID1:       id1,
				ID2:       id2,
				Timestamp: timestamp + int64(step),
				Lat:       g.randomInRange(g.cfg.MinLat, g.cfg.MaxLat),
				Lng:       g.randomInRange(g.cfg.MinLng, g.cfg.MaxLng),
			}
			if through != nil {
				rec.ContactType = domain.ContactIndirect
				rec.Through = through
			} else {
				rec.ContactType = domain.ContactDirect
			}
			records = append(records, rec)
		}
	}

	return records, nil
}

func (g *Generator) randomPair() (int, int) {
	id1 := 1 + g.rand.Intn(g.cfg.NumUsers)
	id2 := 1 + g.rand.Intn(g.cfg.NumUsers)
	for id2 == id1 {
		id2 = 1 + g.rand.Intn(g.cfg.NumUsers)
	}
	return id1, id2
}

func (g *Generator) randomIntermediary(id1, id2 int) *int {
	through := 1 + g.rand.Intn(g.cfg.NumUsers)
	for through == id1 || through == id2 {
		through = 1 + g.rand.Intn(g.cfg.NumUsers)
	}
	return &through
}

func (g *Generator) randomInRange(min, max float64) float64 {
	return min + g.rand.Float64()*(max-min)
}
