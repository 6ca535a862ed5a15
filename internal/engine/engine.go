// Package engine fits global autoregressive models over panel data and
// produces multi-horizon forecasts. A single pooled model (or one per
// horizon under the direct strategy) is trained on the stacked feature rows
// of every entity; prediction fans out per entity.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panelcast/panelcast/internal/calendar"
	"github.com/panelcast/panelcast/internal/feature"
	"github.com/panelcast/panelcast/internal/logging"
	"github.com/panelcast/panelcast/internal/panel"
	"github.com/panelcast/panelcast/internal/ranges"
	"github.com/panelcast/panelcast/internal/regress"
)

const defaultWorkers = 8

// Config drives a fit.
type Config struct {
	Strategy  Strategy
	Horizon   int
	Features  feature.Spec
	Frequency ranges.Frequency
	Calendar  []calendar.Effect

	// MaxWorkers bounds entity-level parallelism during predict.
	MaxWorkers int
	// MaxFitWorkers bounds per-horizon parallelism in direct fits.
	MaxFitWorkers int
}

// Validate checks the config before any fitting begins.
func (c *Config) Validate() error {
	if !c.Strategy.Valid() {
		return &ConfigError{Reason: fmt.Sprintf("unknown strategy %d", c.Strategy)}
	}
	if c.Horizon < 1 {
		return &ConfigError{Reason: fmt.Sprintf("horizon must be >= 1, got %d", c.Horizon)}
	}
	if err := c.Features.Validate(); err != nil {
		return &ConfigError{Reason: err.Error()}
	}
	if !c.Frequency.Valid() {
		return &ConfigError{Reason: "invalid frequency"}
	}
	for _, e := range c.Calendar {
		if !e.Valid() {
			return &ConfigError{Reason: fmt.Sprintf("unknown calendar effect %d", e)}
		}
	}
	return nil
}

// Engine fits forecast models. One Engine can run many fits; it holds no
// per-fit state.
type Engine struct {
	cfg       Config
	regressor regress.Regressor

	// Censored variant, nil otherwise.
	classifier regress.Classifier
	threshold  float64
}

// New returns an engine for the given config and estimator.
func New(cfg Config, r regress.Regressor) (*Engine, error) {
	if r == nil {
		return nil, &ConfigError{Reason: "regressor is required"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, regressor: r}, nil
}

// Fit trains the strategy's model set on the panel. The fit is atomic: any
// entity left without training rows for a required horizon fails the whole
// call and nothing is fit.
func (e *Engine) Fit(ctx context.Context, f *panel.Frame) (*Model, error) {
	start := time.Now()

	userExog := f.ValueCols()[1:]
	f, err := calendar.Join(f, e.cfg.Calendar)
	if err != nil {
		return nil, err
	}

	if cats := f.CategoricalCols(); len(cats) > 0 && fitsIntercept(e.regressor) {
		return nil, &ConfigError{
			Reason:  "categorical exogenous columns cannot be combined with an intercept-fitting linear estimator",
			Columns: cats,
		}
	}

	builder, err := feature.NewBuilder(e.cfg.Features)
	if err != nil {
		return nil, err
	}

	m := &Model{
		Strategy:  e.cfg.Strategy,
		Horizon:   e.cfg.Horizon,
		Spec:      e.cfg.Features,
		Freq:      e.cfg.Frequency,
		Calendar:  e.cfg.Calendar,
		EntityCol: f.EntityCol(),
		TimeCol:   f.TimeCol(),
		Target:    f.TargetCol(),
		UserExog:  userExog,
		Entities:  f.Entities(),
		Workers:   e.cfg.MaxWorkers,
	}
	if e.classifier != nil {
		m.Censored = true
		m.Threshold = e.threshold
	}

	if e.cfg.Strategy != Direct {
		if err := e.fitRecursive(ctx, builder, f, m); err != nil {
			return nil, err
		}
	}
	if e.cfg.Strategy != Recursive {
		if err := e.fitDirect(ctx, builder, f, m); err != nil {
			return nil, err
		}
	}

	m.retainHistory(f, builder)

	logging.InfoCtx(ctx, "model fitted",
		"strategy", e.cfg.Strategy.String(),
		"horizon", e.cfg.Horizon,
		"entities", len(m.Entities),
		"duration", time.Since(start))
	return m, nil
}

// fitRecursive fits the pooled one-step model (and classifier for the
// censored variant).
func (e *Engine) fitRecursive(ctx context.Context, builder *feature.Builder, f *panel.Frame, m *Model) error {
	set, err := buildChecked(builder, f, 1)
	if err != nil {
		return err
	}
	model, err := e.regressor.Fit(set.X, set.Y)
	if err != nil {
		return fmt.Errorf("fitting one-step model: %w", err)
	}
	m.RecursiveModel = model

	if e.classifier != nil {
		cls, err := e.classifier.FitClassifier(set.X, thresholdLabels(set.Y, e.threshold))
		if err != nil {
			return fmt.Errorf("fitting one-step classifier: %w", err)
		}
		m.RecursiveCls = cls
	}
	return ctx.Err()
}

// fitDirect fits one model per horizon in parallel, bounded by
// MaxFitWorkers. Results land in an indexed slice so order is stable.
func (e *Engine) fitDirect(ctx context.Context, builder *feature.Builder, f *panel.Frame, m *Model) error {
	workers := e.cfg.MaxFitWorkers
	if workers < 1 {
		workers = 1
	}

	models := make([]regress.Model, e.cfg.Horizon)
	classifiers := make([]regress.ProbModel, e.cfg.Horizon)
	errs := make([]error, e.cfg.Horizon)

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for h := 1; h <= e.cfg.Horizon; h++ {
		wg.Add(1)
		go func(h int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			set, err := buildChecked(builder, f, h)
			if err != nil {
				errs[h-1] = err
				return
			}
			model, err := e.regressor.Fit(set.X, set.Y)
			if err != nil {
				errs[h-1] = fmt.Errorf("fitting horizon %d model: %w", h, err)
				return
			}
			models[h-1] = model

			if e.classifier != nil {
				cls, err := e.classifier.FitClassifier(set.X, thresholdLabels(set.Y, e.threshold))
				if err != nil {
					errs[h-1] = fmt.Errorf("fitting horizon %d classifier: %w", h, err)
					return
				}
				classifiers[h-1] = cls
			}
		}(h)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	m.DirectModels = models
	if e.classifier != nil {
		m.DirectCls = classifiers
	}
	return ctx.Err()
}

// buildChecked builds the feature set for one horizon offset and verifies
// every entity contributed at least one row.
func buildChecked(builder *feature.Builder, f *panel.Frame, offset int) (*feature.Set, error) {
	set, err := builder.Build(f, offset)
	if err != nil {
		return nil, err
	}
	counts := set.EntityRows()
	for _, entity := range f.Entities() {
		if counts[entity] == 0 {
			return nil, &InsufficientDataError{Entity: entity, Horizon: offset}
		}
	}
	return set, nil
}

func fitsIntercept(r regress.Regressor) bool {
	fi, ok := r.(regress.InterceptFitter)
	return ok && fi.FitsIntercept()
}
