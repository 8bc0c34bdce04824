// Package rpc exposes the ground-wave engine and the station catalogue over
// gRPC.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/groundwave/core"
	"github.com/signalsfoundry/groundwave/geopath"
	"github.com/signalsfoundry/groundwave/internal/logging"
	"github.com/signalsfoundry/groundwave/internal/observability"
	"github.com/signalsfoundry/groundwave/kb"
	"github.com/signalsfoundry/groundwave/model"
)

// DefaultMaxSweepPoints caps one Sweep request unless overridden.
const DefaultMaxSweepPoints = 10000

// PredictionService implements PredictionServiceServer on a core.Engine and
// a station catalogue.
type PredictionService struct {
	engine  *core.Engine
	store   *kb.KnowledgeBase
	metrics *observability.PredictionCollector
	log     logging.Logger

	sweepWorkers   int
	maxSweepPoints int
}

// ServiceOption customises a PredictionService.
type ServiceOption func(*PredictionService)

// WithPredictionMetrics records every evaluation on c.
func WithPredictionMetrics(c *observability.PredictionCollector) ServiceOption {
	return func(s *PredictionService) { s.metrics = c }
}

// WithSweepLimits bounds sweep concurrency and size. Non-positive values
// keep the defaults.
func WithSweepLimits(workers, maxPoints int) ServiceOption {
	return func(s *PredictionService) {
		if workers > 0 {
			s.sweepWorkers = workers
		}
		if maxPoints > 0 {
			s.maxSweepPoints = maxPoints
		}
	}
}

// NewPredictionService constructs the service. A nil store serves an empty
// default catalogue.
func NewPredictionService(engine *core.Engine, store *kb.KnowledgeBase, log logging.Logger, opts ...ServiceOption) *PredictionService {
	if engine == nil {
		engine = core.NewEngine()
	}
	if store == nil {
		store = kb.NewWithDefaults()
	}
	if log == nil {
		log = logging.Noop()
	}
	s := &PredictionService{
		engine:         engine,
		store:          store,
		log:            log,
		maxSweepPoints: DefaultMaxSweepPoints,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ PredictionServiceServer = (*PredictionService)(nil)

func (s *PredictionService) logger(ctx context.Context) logging.Logger {
	return logging.FromContext(ctx, s.log)
}

// Predict evaluates a single path.
func (s *PredictionService) Predict(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := DecodeInput(req.AsMap())
	if err != nil {
		return nil, ToStatusError(err)
	}
	p, err := s.evaluate(ctx, in)
	if err != nil {
		return nil, ToStatusError(err)
	}
	return toStruct(predictionFields(in, p))
}

// Sweep evaluates one path at many distances. The response lists the
// points in request order.
func (s *PredictionService) Sweep(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, dists, err := decodeSweep(req.AsMap(), s.maxSweepPoints)
	if err != nil {
		return nil, ToStatusError(err)
	}

	ctx, span := observability.StartSpan(ctx, "lfmf.sweep",
		attribute.Int("points", len(dists)),
		attribute.Float64("f_mhz", in.FrequencyMHz),
	)
	defer span.End()

	start := time.Now()
	preds, err := s.engine.Sweep(ctx, in, dists, s.sweepWorkers)
	if err != nil {
		span.RecordError(err)
		s.logger(ctx).Warn(ctx, "sweep failed", logging.Int("points", len(dists)), logging.Err(err))
		return nil, ToStatusError(err)
	}
	s.metrics.AddSweepPoints(len(preds))

	points := make([]any, len(preds))
	for i, p := range preds {
		pin := in
		pin.DistanceKm = dists[i]
		points[i] = predictionFields(pin, p)
	}
	s.logger(ctx).Debug(ctx, "sweep complete",
		logging.Int("points", len(preds)),
		logging.Any("duration", time.Since(start)),
	)
	return toStruct(map[string]any{"points": points})
}

// PredictStations evaluates the path between two catalogued stations.
func (s *PredictionService) PredictStations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r, err := decodeStations(req.AsMap())
	if err != nil {
		return nil, ToStatusError(err)
	}
	tx, err := s.store.Station(r.TxID)
	if err != nil {
		return nil, ToStatusError(err)
	}
	rx, err := s.store.Station(r.RxID)
	if err != nil {
		return nil, ToStatusError(err)
	}

	var ground model.GroundType
	if r.GroundType != "" {
		ground, err = s.store.GroundType(r.GroundType)
	} else {
		ground, err = s.store.GroundFor(tx)
	}
	if err != nil {
		return nil, ToStatusError(err)
	}

	in, err := geopath.PathBetween(tx, rx, ground, r.SurfaceRefractivity)
	if err != nil {
		return nil, ToStatusError(err)
	}
	p, err := s.evaluate(ctx, in)
	if err != nil {
		return nil, ToStatusError(err)
	}

	fields := predictionFields(in, p)
	fields["tx_id"] = tx.ID
	fields["rx_id"] = rx.ID
	fields["ground_type"] = ground.Name
	return toStruct(fields)
}

// ListGroundTypes returns the catalogue ground types and the default.
func (s *PredictionService) ListGroundTypes(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	grounds := s.store.ListGroundTypes()
	list := make([]any, len(grounds))
	for i, g := range grounds {
		list[i] = groundFields(g)
	}
	resp := map[string]any{"ground_types": list}
	if def, err := s.store.GroundFor(model.Station{}); err == nil {
		resp["default_ground"] = def.Name
	}
	return toStruct(resp)
}

// ListStations returns the catalogue stations sorted by ID.
func (s *PredictionService) ListStations(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	stations := s.store.ListStations()
	list := make([]any, len(stations))
	for i, st := range stations {
		list[i] = stationFields(st)
	}
	return toStruct(map[string]any{"stations": list})
}

// evaluate runs one prediction with a span, metrics and a log line.
func (s *PredictionService) evaluate(ctx context.Context, in model.Input) (core.Prediction, error) {
	ctx, span := observability.StartSpan(ctx, "lfmf.predict",
		attribute.Float64("f_mhz", in.FrequencyMHz),
		attribute.Float64("d_km", in.DistanceKm),
		attribute.String("pol", in.Polarization.String()),
	)
	defer span.End()

	start := time.Now()
	p, err := s.engine.Run(in)
	elapsed := time.Since(start)

	code := core.CodeOf(err)
	method := ""
	switch {
	case err == nil:
		method = p.Method.Key()
	case !errors.Is(err, core.ErrInputOutOfRange):
		method = core.SelectMethod(in.DistanceKm, in.FrequencyMHz).Key()
	}
	s.metrics.ObservePrediction(method, strconv.Itoa(int(code)), p.Modes, elapsed)
	span.SetAttributes(
		attribute.Int("return_code", int(code)),
		attribute.String("method", method),
		attribute.Int("modes", p.Modes),
	)

	log := s.logger(ctx)
	if err != nil {
		span.RecordError(err)
		log.Warn(ctx, "prediction failed",
			logging.Int("return_code", int(code)),
			logging.String("status", code.String()),
			logging.Err(err),
		)
		return core.Prediction{}, fmt.Errorf("predict: %w", err)
	}
	log.Debug(ctx, "prediction complete",
		logging.String("method", method),
		logging.Float64("a_btl_db", p.ABtlDB),
		logging.Int("modes", p.Modes),
	)
	return p, nil
}
