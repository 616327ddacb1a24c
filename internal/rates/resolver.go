package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"
	"sync"
	"time"

	"TaxSentinel/internal/model"
	"TaxSentinel/internal/recorder"
	"TaxSentinel/internal/retry"

	"github.com/shopspring/decimal"
)

const cacheKey = "rate_snapshot"

var errNoSource = errors.New("no live rate source configured")

// cachedSnapshot is the serialized form kept in a Cache.
type cachedSnapshot struct {
	Rates              map[string]decimal.Decimal `json:"rates"`
	Source             string                     `json:"source"`
	FetchedAt          time.Time                  `json:"fetched_at"`
	FilledFromFallback []string                   `json:"filled_from_fallback,omitempty"`
}

// Resolver resolves the current rate snapshot. It reads through the cache,
// refreshes from the live source with a single writer, and degrades to the
// embedded constants when the source fails.
type Resolver struct {
	Source   Source
	Cache    Cache
	Recorder recorder.Recorder
	Policy   retry.Policy
	TTL      time.Duration
	// Fallback is served when the live source fails. Defaults to Fallback().
	Fallback map[string]decimal.Decimal

	now func() time.Time
	mu  sync.Mutex
}

// NewResolver creates a Resolver. cache and rec may be nil.
func NewResolver(src Source, cache Cache, rec recorder.Recorder, ttl time.Duration, policy retry.Policy) *Resolver {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if policy.Name == "" {
		policy.Name = "rate fetch"
	}
	return &Resolver{
		Source:   src,
		Cache:    cache,
		Recorder: rec,
		Policy:   policy,
		TTL:      ttl,
		Fallback: Fallback(),
		now:      time.Now,
	}
}

// Resolve returns a complete snapshot. It never fails: when the live source
// cannot be used the snapshot carries Source == model.SourceFallback.
func (r *Resolver) Resolve(ctx context.Context, forceRefresh bool) model.RateSnapshot {
	if !forceRefresh {
		if snap, ok := r.cached(ctx); ok {
			return snap
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if !forceRefresh {
		if snap, ok := r.cached(ctx); ok {
			return snap
		}
	}

	snap, err := r.fetch(ctx)
	if err != nil {
		log.Printf("[WARN] live rates unavailable, using fallback constants: %v", err)
		fb := r.fallbackSnapshot()
		r.record(fb, forceRefresh, err)
		return fb
	}

	r.store(ctx, snap)
	r.record(snap, forceRefresh, nil)
	log.Printf("[INFO] rates refreshed from %s (%d rates, %d filled from fallback)",
		snap.Source, len(snap.Rates), len(snap.FilledFromFallback))
	return snap
}

func (r *Resolver) fetch(ctx context.Context) (model.RateSnapshot, error) {
	if r.Source == nil {
		return model.RateSnapshot{}, errNoSource
	}

	var table *Table
	err := retry.Do(ctx, r.Policy, func(ctx context.Context) error {
		t, err := r.Source.Fetch(ctx)
		if err != nil {
			return err
		}
		if err := validateTable(t); err != nil {
			return retry.Permanent(fmt.Errorf("%s: %w", r.Source.Name(), err))
		}
		table = t
		return nil
	})
	if err != nil {
		return model.RateSnapshot{}, err
	}

	rates := maps.Clone(table.Rates)
	var filled []string
	for k, v := range r.Fallback {
		if _, ok := rates[k]; !ok {
			rates[k] = v
			filled = append(filled, k)
		}
	}
	slices.Sort(filled)

	source := table.Origin
	if source == "" {
		source = r.Source.Name()
	}
	return model.RateSnapshot{
		Rates:              rates,
		Source:             source,
		FetchedAt:          r.now(),
		FilledFromFallback: filled,
	}, nil
}

func (r *Resolver) fallbackSnapshot() model.RateSnapshot {
	return model.RateSnapshot{
		Rates:     maps.Clone(r.Fallback),
		Source:    model.SourceFallback,
		FetchedAt: r.now(),
	}
}

func (r *Resolver) cached(ctx context.Context) (model.RateSnapshot, bool) {
	raw, ok := r.Cache.Get(ctx, cacheKey)
	if !ok {
		return model.RateSnapshot{}, false
	}
	var c cachedSnapshot
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		log.Printf("[WARN] discarding unreadable cached rates: %v", err)
		return model.RateSnapshot{}, false
	}
	age := r.now().Sub(c.FetchedAt)
	if age < 0 {
		age = 0
	}
	if r.TTL > 0 && age >= r.TTL {
		return model.RateSnapshot{}, false
	}
	return model.RateSnapshot{
		Rates:              c.Rates,
		Source:             c.Source,
		FetchedAt:          c.FetchedAt,
		CacheAge:           age,
		FilledFromFallback: c.FilledFromFallback,
	}, true
}

// store caches a live snapshot. Fallback snapshots are never cached so the
// next resolution retries the source.
func (r *Resolver) store(ctx context.Context, snap model.RateSnapshot) {
	data, err := json.Marshal(cachedSnapshot{
		Rates:              snap.Rates,
		Source:             snap.Source,
		FetchedAt:          snap.FetchedAt,
		FilledFromFallback: snap.FilledFromFallback,
	})
	if err != nil {
		log.Printf("[ERROR] encode rates for cache: %v", err)
		return
	}
	if err := r.Cache.Set(ctx, cacheKey, string(data), r.TTL); err != nil {
		log.Printf("[WARN] cache rates: %v", err)
	}
}

func (r *Resolver) record(snap model.RateSnapshot, forced bool, cause error) {
	evt := &recorder.ResolutionEvent{
		Timestamp:          snap.FetchedAt,
		Source:             snap.Source,
		Degraded:           snap.IsFallback(),
		Forced:             forced,
		Rates:              snap.Rates,
		FilledFromFallback: snap.FilledFromFallback,
	}
	if cause != nil {
		evt.Error = cause.Error()
	}
	if err := r.Recorder.RecordResolution(evt); err != nil {
		log.Printf("[ERROR] record rate resolution: %v", err)
	}
}
