package mgnrega

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/farxc/mgnrega-goa/internal/logger"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/downloader"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/files"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/generator"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
	"github.com/farxc/mgnrega-goa/internal/response"
	"github.com/farxc/mgnrega-goa/internal/store"
)

var ErrNoTierAnswered = errors.New("no data tier produced a result")

type Options struct {
	Remote    *downloader.Client
	CSV       *files.CSVCache
	Storage   *store.Storage
	Generator *generator.Generator
	Logger    *logger.Logger
	Clock     func() time.Time
}

// Orchestrator answers queries from the first tier that has data:
// remote API, CSV file, persistent store, then generated data.
type Orchestrator struct {
	tiers []Tier
	csv   *files.CSVCache
	log   *logger.Logger
	now   func() time.Time
}

func NewOrchestrator(opts Options) *Orchestrator {
	o := &Orchestrator{
		csv: opts.CSV,
		log: opts.Logger,
		now: opts.Clock,
	}
	if o.now == nil {
		o.now = time.Now
	}

	if opts.Remote != nil {
		o.tiers = append(o.tiers, &remoteTier{client: opts.Remote, storage: opts.Storage, log: opts.Logger, now: o.now})
	}
	if opts.CSV != nil {
		o.tiers = append(o.tiers, &csvTier{cache: opts.CSV, log: opts.Logger})
	}
	if opts.Storage != nil && opts.Storage.Records != nil {
		o.tiers = append(o.tiers, &storeTier{storage: opts.Storage, log: opts.Logger})
	}
	gen := opts.Generator
	if gen == nil {
		gen = generator.New()
	}
	o.tiers = append(o.tiers, &generatorTier{gen: gen})

	return o
}

// NewWithTiers builds an orchestrator over an explicit tier list.
func NewWithTiers(tiers []Tier, csv *files.CSVCache, appLogger *logger.Logger, clock func() time.Time) *Orchestrator {
	if clock == nil {
		clock = time.Now
	}
	return &Orchestrator{tiers: tiers, csv: csv, log: appLogger, now: clock}
}

// TierNames lists the active tiers in the order they are tried.
func (o *Orchestrator) TierNames() []string {
	names := make([]string, 0, len(o.tiers))
	for _, t := range o.tiers {
		names = append(names, t.Name())
	}
	return names
}

func (o *Orchestrator) GetAllData(ctx context.Context) (response.Envelope, error) {
	return o.Resolve(ctx, types.Query{Kind: types.QueryAll})
}

func (o *Orchestrator) GetDistricts(ctx context.Context) (response.Envelope, error) {
	return o.Resolve(ctx, types.Query{Kind: types.QueryDistricts})
}

func (o *Orchestrator) GetDistrictData(ctx context.Context, district string) (response.Envelope, error) {
	district = strings.TrimSpace(district)
	if district == "" {
		return response.Envelope{}, fmt.Errorf("%w: district name is required", types.ErrMissingParameter)
	}
	return o.Resolve(ctx, types.Query{Kind: types.QueryDistrict, District: district})
}

// ClearCache empties the CSV cache only.
func (o *Orchestrator) ClearCache() {
	if o.csv != nil {
		o.csv.Clear()
		o.log.Info("Orchestrator", "CSV cache cleared: path=%s", o.csv.Path())
	}
}

// Resolve walks the tiers in order and returns the first answer.
func (o *Orchestrator) Resolve(ctx context.Context, q types.Query) (response.Envelope, error) {
	const component = "Orchestrator"
	start := time.Now()
	defer func() {
		resolveDuration.WithLabelValues(q.Kind.String()).Observe(time.Since(start).Seconds())
	}()

	for _, tier := range o.tiers {
		res, ok := o.attempt(ctx, tier, q)
		if !ok {
			continue
		}

		env := response.Envelope{
			Success:   true,
			Source:    tier.Source(),
			Data:      res.Records,
			Districts: res.Districts,
			Timestamp: response.Timestamp(o.now()),
			Note:      res.Note,
		}
		if q.Kind == types.QueryDistricts {
			env.Count = len(res.Districts)
		} else {
			env.Count = len(res.Records)
		}

		responsesTotal.WithLabelValues(q.Kind.String(), string(tier.Source())).Inc()
		o.log.Info(component, "Query answered: query=%s district=%q source=%s count=%d", q.Kind, q.District, tier.Source(), env.Count)
		return env, nil
	}

	o.log.Error(component, "No tier answered: query=%s district=%q", q.Kind, q.District)
	return response.Envelope{}, ErrNoTierAnswered
}

// attempt runs one tier, turning a panic into a plain miss.
func (o *Orchestrator) attempt(ctx context.Context, tier Tier, q types.Query) (res Result, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("Orchestrator", "Tier panicked: tier=%s query=%s panic=%v", tier.Name(), q.Kind, r)
			res, ok = Result{}, false
		}
		outcome := "miss"
		if ok {
			outcome = "hit"
		}
		tierAttempts.WithLabelValues(tier.Name(), outcome).Inc()
	}()

	return tier.Attempt(ctx, q)
}
