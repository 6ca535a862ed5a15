package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/panelcast/panelcast/internal/artifacts"
	"github.com/panelcast/panelcast/internal/calendar"
	"github.com/panelcast/panelcast/internal/config"
	"github.com/panelcast/panelcast/internal/engine"
	"github.com/panelcast/panelcast/internal/feature"
	"github.com/panelcast/panelcast/internal/logging"
	"github.com/panelcast/panelcast/internal/metrics"
	"github.com/panelcast/panelcast/internal/models"
	"github.com/panelcast/panelcast/internal/panel"
	"github.com/panelcast/panelcast/internal/queue"
	"github.com/panelcast/panelcast/internal/ranges"
	"github.com/panelcast/panelcast/internal/regress"
	"github.com/panelcast/panelcast/internal/transform"
)

// ForecastService orchestrates fitting, forecasting and evaluation.
type ForecastService struct {
	logger    *logging.Logger
	store     *artifacts.Store
	publisher queue.Publisher
	defaults  config.EngineConfig
}

// NewForecastService creates a new ForecastService. The publisher may be
// nil; events are then skipped.
func NewForecastService(
	logger *logging.Logger,
	store *artifacts.Store,
	publisher queue.Publisher,
	defaults config.EngineConfig,
) *ForecastService {
	return &ForecastService{
		logger:    logger,
		store:     store,
		publisher: publisher,
		defaults:  defaults,
	}
}

// Forecast runs a one-shot fit and predict. Nothing is persisted; optional
// transforms are applied to the target column before fitting and inverted
// on the forecast.
func (s *ForecastService) Forecast(ctx context.Context, req *models.ForecastRequest) (*models.ForecastResponse, error) {
	if req.Horizon < 1 {
		return nil, NewServiceError(CodeInvalidRequest, "horizon must be >= 1")
	}
	if len(req.Transforms) > 0 && req.Engine.Censored != nil {
		return nil, NewServiceError(CodeInvalidRequest,
			"transforms cannot be combined with the censored variant")
	}

	frame, err := buildFrame(&req.Panel)
	if err != nil {
		return nil, wrapDomainError(err)
	}

	spec := req.Engine
	if spec.Horizon == 0 {
		spec.Horizon = req.Horizon
	}
	eng, freq, err := s.buildEngine(spec)
	if err != nil {
		return nil, wrapDomainError(err)
	}

	transforms, err := buildTransforms(req.Transforms)
	if err != nil {
		return nil, NewServiceError(CodeInvalidRequest, err.Error())
	}
	frame, err = forwardTarget(frame, transforms)
	if err != nil {
		return nil, wrapDomainError(err)
	}

	start := time.Now()
	model, err := eng.Fit(ctx, frame)
	if err != nil {
		return nil, wrapDomainError(err)
	}

	var future *panel.Frame
	if req.Future != nil {
		future, err = buildFrame(req.Future)
		if err != nil {
			return nil, wrapDomainError(err)
		}
	}

	forecast, err := model.Predict(ctx, req.Horizon, future)
	if err != nil {
		return nil, wrapDomainError(err)
	}
	for i := len(transforms) - 1; i >= 0; i-- {
		forecast, err = transforms[i].Invert(forecast)
		if err != nil {
			return nil, wrapDomainError(err)
		}
	}

	s.logger.Info("One-shot forecast completed",
		"entities", len(model.Entities),
		"horizon", req.Horizon,
		"strategy", model.Strategy.String(),
		"duration", time.Since(start))

	s.publish(queue.SubjectForecastCompleted, queue.ForecastCompletedEvent{
		Entities:    len(model.Entities),
		Horizon:     req.Horizon,
		CompletedAt: time.Now().UTC(),
	})

	return forecastResponse(forecast, freq), nil
}

// FitModel fits a model and stores the artifact.
func (s *ForecastService) FitModel(ctx context.Context, req *models.FitRequest) (*models.ModelResponse, error) {
	frame, err := buildFrame(&req.Panel)
	if err != nil {
		return nil, wrapDomainError(err)
	}

	eng, _, err := s.buildEngine(req.Engine)
	if err != nil {
		return nil, wrapDomainError(err)
	}

	start := time.Now()
	model, err := eng.Fit(ctx, frame)
	if err != nil {
		return nil, wrapDomainError(err)
	}

	info, err := s.store.Save(model)
	if err != nil {
		return nil, wrapDomainError(err)
	}

	s.logger.Info("Model fitted and stored",
		"model_id", info.ID,
		"strategy", info.Strategy,
		"entities", info.Entities,
		"duration", time.Since(start))

	s.publish(queue.SubjectModelFitted, queue.ModelFittedEvent{
		ModelID:  info.ID,
		Strategy: info.Strategy,
		Horizon:  info.Horizon,
		Entities: info.Entities,
		FittedAt: info.CreatedAt,
	})

	resp := modelResponse(info)
	return &resp, nil
}

// Predict forecasts from a stored model.
func (s *ForecastService) Predict(ctx context.Context, modelID string, req *models.PredictRequest) (*models.ForecastResponse, error) {
	if req.Horizon < 1 {
		return nil, NewServiceError(CodeInvalidRequest, "horizon must be >= 1")
	}

	model, info, err := s.store.Load(modelID)
	if err != nil {
		return nil, wrapDomainError(err)
	}

	var future *panel.Frame
	if req.Future != nil {
		future, err = buildFrame(req.Future)
		if err != nil {
			return nil, wrapDomainError(err)
		}
	}

	forecast, err := model.Predict(ctx, req.Horizon, future)
	if err != nil {
		return nil, wrapDomainError(err)
	}

	s.publish(queue.SubjectForecastCompleted, queue.ForecastCompletedEvent{
		ModelID:     info.ID,
		Entities:    len(model.Entities),
		Horizon:     req.Horizon,
		CompletedAt: time.Now().UTC(),
	})

	return forecastResponse(forecast, model.Freq), nil
}

// ListModels enumerates stored artifacts, newest first.
func (s *ForecastService) ListModels() (*models.ModelListResponse, error) {
	infos, err := s.store.List()
	if err != nil {
		return nil, wrapDomainError(err)
	}
	out := make([]models.ModelResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, modelResponse(info))
	}
	return &models.ModelListResponse{Models: out, Count: len(out)}, nil
}

// DescribeModel returns one stored artifact's metadata.
func (s *ForecastService) DescribeModel(modelID string) (*models.ModelResponse, error) {
	info, err := s.store.Describe(modelID)
	if err != nil {
		return nil, wrapDomainError(err)
	}
	resp := modelResponse(info)
	return &resp, nil
}

// DeleteModel removes a stored artifact.
func (s *ForecastService) DeleteModel(modelID string) error {
	if err := s.store.Delete(modelID); err != nil {
		return wrapDomainError(err)
	}
	s.logger.Info("Model deleted", "model_id", modelID)
	return nil
}

// Evaluate scores a forecast against actuals per entity.
func (s *ForecastService) Evaluate(req *models.EvaluateRequest) (*models.EvaluateResponse, error) {
	metric, err := metrics.ParseMetric(req.Metric)
	if err != nil {
		return nil, NewServiceError(CodeInvalidRequest, err.Error())
	}

	actual, err := buildFrame(&req.Actual)
	if err != nil {
		return nil, wrapDomainError(err)
	}
	forecast, err := buildFrame(&req.Forecast)
	if err != nil {
		return nil, wrapDomainError(err)
	}
	var train *panel.Frame
	if req.Train != nil {
		train, err = buildFrame(req.Train)
		if err != nil {
			return nil, wrapDomainError(err)
		}
	}

	scores, err := metrics.Evaluate(metric, actual, forecast, train)
	if err != nil {
		return nil, NewServiceError(CodeInvalidRequest, err.Error())
	}

	return &models.EvaluateResponse{Metric: metric.String(), Scores: scores}, nil
}

// buildEngine resolves the engine spec against configured defaults.
func (s *ForecastService) buildEngine(spec models.EngineSpec) (*engine.Engine, ranges.Frequency, error) {
	strategyName := spec.Strategy
	if strategyName == "" {
		strategyName = s.defaults.Strategy
	}
	strategy, err := engine.ParseStrategy(strategyName)
	if err != nil {
		return nil, ranges.Frequency{}, &engine.ConfigError{Reason: err.Error()}
	}

	horizon := spec.Horizon
	if horizon == 0 {
		horizon = s.defaults.Horizon
	}

	lags := spec.Lags
	windows := make([]feature.Window, 0, len(spec.Windows))
	for _, w := range spec.Windows {
		stat, err := feature.ParseStat(w.Stat)
		if err != nil {
			return nil, ranges.Frequency{}, &engine.ConfigError{Reason: err.Error()}
		}
		windows = append(windows, feature.Window{Size: w.Size, Stat: stat})
	}
	if len(lags) == 0 && len(windows) == 0 {
		lags = s.defaults.Lags
	}

	freqName := spec.Frequency
	if freqName == "" {
		freqName = s.defaults.Frequency
	}
	freq, err := ranges.Parse(freqName)
	if err != nil {
		return nil, ranges.Frequency{}, &engine.ConfigError{Reason: err.Error()}
	}

	effects, err := calendar.ParseEffects(spec.Calendar)
	if err != nil {
		return nil, ranges.Frequency{}, &engine.ConfigError{Reason: err.Error()}
	}

	maxWorkers := spec.MaxWorkers
	if maxWorkers == 0 {
		maxWorkers = s.defaults.MaxWorkers
	}

	cfg := engine.Config{
		Strategy:      strategy,
		Horizon:       horizon,
		Features:      feature.Spec{Lags: lags, Windows: windows},
		Frequency:     freq,
		Calendar:      effects,
		MaxWorkers:    maxWorkers,
		MaxFitWorkers: s.defaults.MaxFitWorkers,
	}

	regressor, err := buildEstimator(spec.Estimator)
	if err != nil {
		return nil, ranges.Frequency{}, &engine.ConfigError{Reason: err.Error()}
	}

	var eng *engine.Engine
	if spec.Censored != nil {
		eng, err = engine.NewCensored(cfg, regressor, regress.NewLogistic(), spec.Censored.Threshold)
	} else {
		eng, err = engine.New(cfg, regressor)
	}
	if err != nil {
		return nil, ranges.Frequency{}, err
	}
	return eng, freq, nil
}

func buildEstimator(spec *models.EstimatorSpec) (regress.Regressor, error) {
	if spec == nil {
		return regress.NewOLS(), nil
	}

	intercept := true
	if spec.Intercept != nil {
		intercept = *spec.Intercept
	}

	var base regress.Regressor
	switch strings.ToLower(spec.Type) {
	case "", "ols":
		base = &regress.OLS{Intercept: intercept}
	case "ridge":
		r := regress.NewRidge(spec.Alpha)
		r.Intercept = intercept
		base = r
	default:
		return nil, fmt.Errorf("unknown estimator type %q (supported: ols, ridge)", spec.Type)
	}

	if spec.Standardize {
		base = regress.Standardize(base)
	}
	return base, nil
}

func buildTransforms(specs []models.TransformSpec) ([]transform.Transform, error) {
	out := make([]transform.Transform, 0, len(specs))
	for _, spec := range specs {
		switch strings.ToLower(spec.Type) {
		case "difference":
			order := spec.Order
			if order == 0 {
				order = 1
			}
			period := spec.Period
			if period == 0 {
				period = 1
			}
			d, err := transform.NewDifference(order, period)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		case "boxcox":
			out = append(out, transform.NewBoxCox())
		case "impute":
			method, err := transform.ParseImputeMethod(spec.Method)
			if err != nil {
				return nil, err
			}
			out = append(out, transform.NewImpute(method, spec.Value))
		default:
			return nil, fmt.Errorf("unknown transform type %q (supported: difference, boxcox, impute)", spec.Type)
		}
	}
	return out, nil
}

// forwardTarget applies the transform chain to the target column only.
// Exogenous columns must keep their original scale: the model reads future
// exogenous values raw at predict time, so transforming them during training
// would put fitting and prediction on different scales.
func forwardTarget(f *panel.Frame, trs []transform.Transform) (*panel.Frame, error) {
	if len(trs) == 0 {
		return f, nil
	}

	target := f.TargetCol()
	sub := make([]panel.Row, 0, f.NumRows())
	for _, r := range f.Rows() {
		sub = append(sub, panel.Row{Entity: r.Entity, Time: r.Time, Values: []float64{r.Values[0]}})
	}
	tf, err := f.WithColumns([]string{target}, sub)
	if err != nil {
		return nil, err
	}
	for _, tr := range trs {
		tf, err = tr.Forward(tf)
		if err != nil {
			return nil, err
		}
	}
	if len(f.ValueCols()) == 1 {
		return tf, nil
	}

	// Splice the transformed target back next to the untouched exogenous
	// columns. Rows the transforms dropped are dropped here too.
	transformed := make(map[panel.Key]float64, tf.NumRows())
	for _, r := range tf.Rows() {
		transformed[panel.Key{Entity: r.Entity, Time: r.Time}] = r.Values[0]
	}
	rows := make([]panel.Row, 0, tf.NumRows())
	for _, r := range f.Rows() {
		y, ok := transformed[panel.Key{Entity: r.Entity, Time: r.Time}]
		if !ok {
			continue
		}
		values := append([]float64(nil), r.Values...)
		values[0] = y
		rows = append(rows, panel.Row{Entity: r.Entity, Time: r.Time, Values: values})
	}
	return f.WithRows(rows)
}

func buildFrame(p *models.Panel) (*panel.Frame, error) {
	f, err := panel.FromRecords(p.Columns, p.Records)
	if err != nil {
		return nil, err
	}
	if len(p.Categorical) > 0 {
		f = f.MarkCategorical(p.Categorical...)
	}
	return f, nil
}

func forecastResponse(f *panel.Frame, freq ranges.Frequency) *models.ForecastResponse {
	cols := f.ValueCols()
	points := make([]models.ForecastPoint, 0, f.NumRows())
	for _, r := range f.Rows() {
		values := make(map[string]float64, len(cols))
		for i, c := range cols {
			values[c] = r.Values[i]
		}
		points = append(points, models.ForecastPoint{
			Entity: r.Entity,
			Time:   encodeTime(freq, r.Time),
			Values: values,
		})
	}
	return &models.ForecastResponse{
		Columns: append([]string{f.EntityCol(), f.TimeCol()}, cols...),
		Points:  points,
		Count:   len(points),
	}
}

func encodeTime(freq ranges.Frequency, t time.Time) interface{} {
	if freq.Unit == ranges.UnitIndex {
		return panel.TimeIndex(t)
	}
	return t.Format(time.RFC3339)
}

func modelResponse(info artifacts.Info) models.ModelResponse {
	return models.ModelResponse{
		ModelID:   info.ID,
		Strategy:  info.Strategy,
		Horizon:   info.Horizon,
		Entities:  info.Entities,
		Censored:  info.Censored,
		CreatedAt: info.CreatedAt.Format(time.RFC3339),
		SizeBytes: info.SizeBytes,
	}
}

// publish sends an event on a best-effort basis.
func (s *ForecastService) publish(subject string, event interface{}) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := queue.PublishEvent(ctx, s.publisher, subject, event); err != nil {
		s.logger.Warn("Failed to publish event", "subject", subject, "error", err)
	}
}
