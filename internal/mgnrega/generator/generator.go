package generator

import (
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
)

const (
	FirstYear     = 2022
	LastYear      = 2024
	GrowthPerYear = 0.15
	jitterLow     = 0.9
	jitterSpan    = 0.2
)

// Profile holds the per-district base magnitudes for one month in FirstYear.
type Profile struct {
	District           string
	PersonDays         float64
	Households         float64
	FundsSpent         float64
	WorksCompleted     float64
	AverageWage        float64
	WomenParticipation float64
}

var (
	NorthGoa = Profile{
		District:           "North Goa",
		PersonDays:         42000,
		Households:         3100,
		FundsSpent:         8_400_000,
		WorksCompleted:     118,
		AverageWage:        315,
		WomenParticipation: 52,
	}
	SouthGoa = Profile{
		District:           "South Goa",
		PersonDays:         36500,
		Households:         2750,
		FundsSpent:         7_250_000,
		WorksCompleted:     96,
		AverageWage:        308,
		WomenParticipation: 56,
	}
)

var Profiles = []Profile{NorthGoa, SouthGoa}

type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

type Option func(*Generator)

// WithRand injects the random source, e.g. a seeded one for fixtures.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func New(opts ...Option) *Generator {
	g := &Generator{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		seed := uint64(time.Now().UnixNano())
		g.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return g
}

// Districts lists the districts GenerateAll covers.
func (g *Generator) Districts() []string {
	names := make([]string, 0, len(Profiles))
	for _, p := range Profiles {
		names = append(names, p.District)
	}
	return names
}

// GenerateAll yields one record per district, year and month.
func (g *Generator) GenerateAll() []types.Record {
	records := make([]types.Record, 0, len(Profiles)*(LastYear-FirstYear+1)*12)
	for _, p := range Profiles {
		records = append(records, g.generate(p.District, p)...)
	}
	return records
}

// GenerateForDistrict labels every record with name exactly as given. Names
// containing "south" get South Goa magnitudes, anything else North Goa.
func (g *Generator) GenerateForDistrict(name string) []types.Record {
	return g.generate(name, ProfileFor(name))
}

func ProfileFor(name string) Profile {
	if strings.Contains(strings.ToLower(name), "south") {
		return SouthGoa
	}
	return NorthGoa
}

func GrowthFactor(year int) float64 {
	return 1 + GrowthPerYear*float64(year-FirstYear)
}

// SeasonFactor lifts the pre-monsoon and monsoon months and dips the winter ones.
func SeasonFactor(month int) float64 {
	switch month {
	case 4, 5, 6, 7, 8:
		return 1.1
	case 11, 12, 1, 2:
		return 0.95
	default:
		return 1.0
	}
}

func (g *Generator) generate(district string, p Profile) []types.Record {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	records := make([]types.Record, 0, (LastYear-FirstYear+1)*12)
	for year := FirstYear; year <= LastYear; year++ {
		for month := 1; month <= 12; month++ {
			scale := GrowthFactor(year) * SeasonFactor(month)
			records = append(records, types.Record{
				District:           district,
				Month:              month,
				Year:               year,
				PersonDays:         g.count(p.PersonDays * scale),
				Households:         g.count(p.Households * scale),
				FundsSpent:         g.amount(p.FundsSpent * scale),
				WorksCompleted:     g.count(p.WorksCompleted * scale),
				AverageWage:        g.amount(p.AverageWage * scale),
				WomenParticipation: math.Min(100, g.amount(p.WomenParticipation*scale)),
				FetchedAt:          now,
			})
		}
	}
	return records
}

func (g *Generator) jitter() float64 {
	return jitterLow + jitterSpan*g.rng.Float64()
}

// count and amount never return zero; an empty dashboard is what the
// generator exists to avoid.
func (g *Generator) count(base float64) int64 {
	v := int64(math.Round(base * g.jitter()))
	if v < 1 {
		return 1
	}
	return v
}

func (g *Generator) amount(base float64) float64 {
	v := math.Round(base*g.jitter()*100) / 100
	if v <= 0 {
		return 0.01
	}
	return v
}
