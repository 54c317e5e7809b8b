// Package corrupt injects controlled data-quality defects into a Frame.
//
// Six rules exist (freshness, completeness, duplicates, invalidity,
// consistency, accuracy). Each samples floor(rows*pct/100) distinct rows of
// the frame as it stands when the rule runs, so rules compound in order.
package corrupt

import (
	"context"
	"math/rand/v2"
	"time"

	log "github.com/sirupsen/logrus"

	ds "github.com/wdm0006/baddata/pkg/dataset"
)

// Engine builds corruption pipelines over one random source.
type Engine struct {
	src *Source
}

type options struct {
	now time.Time
}

// Option configures an Engine.
type Option func(*options)

// WithClock fixes the reference time date rules measure against.
func WithClock(now time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewEngine returns an engine drawing every random choice from rng.
func NewEngine(rng *rand.Rand, opts ...Option) *Engine {
	o := options{now: time.Now()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{src: NewSource(rng, o.now)}
}

// Now is the clock the date rules measure against.
func (e *Engine) Now() time.Time { return e.src.Now }

// Pipeline translates cfg into a pipeline of rules in cfg order. Unknown
// rule names are logged and skipped.
func (e *Engine) Pipeline(cfg Config) *ds.Pipeline {
	p := ds.NewPipeline()
	for _, s := range cfg {
		r, err := NewRule(s.Rule, s.Percent, e.src)
		if err != nil {
			log.WithField("rule", s.Rule).Warn("ignoring unknown corruption rule")
			continue
		}
		p.Add(r)
	}
	return p
}

// Apply runs every configured rule over a copy of f.
func (e *Engine) Apply(ctx context.Context, f *ds.Frame, cfg Config) (*ds.Frame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if f.Rows() == 0 {
		// Every rule is a no-op on an empty frame.
		return f.Clone(), nil
	}
	out, err := e.Pipeline(cfg).Run(ctx, f)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"rows_in": f.Rows(), "rows_out": out.Rows(), "config": cfg.String()}).Info("corrupted dataset")
	return out, nil
}

// Apply corrupts f using rng and the wall clock.
func Apply(ctx context.Context, f *ds.Frame, cfg Config, rng *rand.Rand) (*ds.Frame, error) {
	return NewEngine(rng).Apply(ctx, f, cfg)
}
