package render

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lblanc/grafana-integration/agent/internal/catalog"
	"github.com/lblanc/grafana-integration/pkg/types"
)

var (
	// ErrUnknownKind is returned for objects whose kind has no dispatch entry.
	ErrUnknownKind = errors.New("unrecognized resource kind")

	// ErrSuspect is returned for objects flagged suspect when suspect data
	// is excluded.
	ErrSuspect = errors.New("suspect data excluded")

	// ErrNoSample is returned when a kind needs a performance sample and
	// the object has none.
	ErrNoSample = errors.New("object has no performance sample")
)

// Renderer turns enriched objects into line-protocol records.
// It only reads the catalog and is safe for concurrent use.
type Renderer struct {
	catalog        *catalog.Catalog
	times          TimeExtractor
	attrTimes      TimeExtractor
	now            func() time.Time
	logger         *slog.Logger
	includeSuspect bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock sets the clock used for kinds that carry no timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithSuspect renders objects flagged suspect instead of skipping them.
func WithSuspect(include bool) Option {
	return func(r *Renderer) { r.includeSuspect = include }
}

// WithAttrTimes decodes timestamps carried on the entity itself (the
// monitors' TimeStamp) with te instead of the collection time extractor.
func WithAttrTimes(te TimeExtractor) Option {
	return func(r *Renderer) { r.attrTimes = te }
}

// New returns a Renderer resolving cross references in cat and decoding
// timestamps with times.
func New(cat *catalog.Catalog, times TimeExtractor, opts ...Option) *Renderer {
	r := &Renderer{
		catalog: cat,
		times:   times,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.times == nil {
		r.times = DateEnvelope{}
	}
	if r.attrTimes == nil {
		r.attrTimes = r.times
	}
	return r
}

// Render returns the lines of one object: one per performance counter, in
// the order the API returned them, followed by one per status field present
// on the object. All lines share one timestamp.
//
// Objects of an unrecognized kind, suspect objects (unless included) and
// objects whose timestamp cannot be decoded produce no lines; the reason is
// logged and returned.
func (r *Renderer) Render(obj types.Object) ([]types.MetricLine, error) {
	spec, ok := kinds[obj.Kind]
	if !ok {
		r.logger.Error("render: unrecognized resource kind, skipping object",
			"kind", obj.Kind, "id", obj.ID(), "caption", obj.Caption())
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, obj.Kind)
	}
	if obj.Suspect && !r.includeSuspect {
		r.logger.Warn("render: skipping suspect object",
			"kind", obj.Kind, "id", obj.ID(), "caption", obj.Caption())
		return nil, ErrSuspect
	}

	ts, err := r.timestamp(spec, obj)
	if err != nil {
		r.logger.Error("render: cannot decode timestamp, skipping object",
			"kind", obj.Kind, "id", obj.ID(), "err", err)
		return nil, fmt.Errorf("%s %s: %w", obj.Kind, obj.ID(), err)
	}

	tags := spec.extract(r, obj.Entity)
	var lines []types.MetricLine
	emit := func(field, value string) {
		lines = append(lines, types.MetricLine{
			Measurement: spec.measurement,
			Tags:        tags,
			Field:       Escape(field),
			Value:       value,
			Timestamp:   ts,
		})
	}

	if spec.sample {
		obj.Sample.Counters(func(name string, v gjson.Result) bool {
			if name == "" {
				r.logger.Warn("render: skipping counter with empty name",
					"kind", obj.Kind, "id", obj.ID())
				return true
			}
			value, ok := fieldValue(v)
			if !ok {
				r.logger.Debug("render: skipping non-scalar counter",
					"kind", obj.Kind, "id", obj.ID(), "counter", name, "type", v.Type.String())
				return true
			}
			emit(name, value)
			return true
		})
	}

	for _, sf := range spec.status {
		v, err := obj.Value(sf.path)
		if err != nil {
			r.logger.Debug("render: status field absent",
				"kind", obj.Kind, "id", obj.ID(), "field", sf.path)
			continue
		}
		value, ok := fieldValue(v)
		if !ok {
			r.logger.Warn("render: status field malformed",
				"kind", obj.Kind, "id", obj.ID(), "field", sf.path, "type", v.Type.String())
			continue
		}
		emit(sf.key, value)
	}

	return lines, nil
}

// Stats summarises a RenderAll call.
type Stats struct {
	Rendered int                // objects that produced lines
	Skipped  int                // objects rejected by Render
	Lines    map[types.Kind]int // lines per kind
}

// RenderAll renders every object and concatenates the lines in input order.
func (r *Renderer) RenderAll(objs []types.Object) ([]types.MetricLine, Stats) {
	stats := Stats{Lines: make(map[types.Kind]int)}
	var out []types.MetricLine
	for _, obj := range objs {
		lines, err := r.Render(obj)
		if err != nil {
			stats.Skipped++
			continue
		}
		if len(lines) > 0 {
			stats.Rendered++
		}
		stats.Lines[obj.Kind] += len(lines)
		out = append(out, lines...)
	}
	return out, stats
}

func (r *Renderer) timestamp(spec kindSpec, obj types.Object) (int64, error) {
	switch {
	case spec.sample:
		if obj.Sample == nil {
			return 0, ErrNoSample
		}
		envelope, err := obj.Sample.CollectionTime()
		if err != nil {
			return 0, err
		}
		return r.times.Extract(envelope)
	case spec.timeAttr != "":
		envelope, err := obj.String(spec.timeAttr)
		if err != nil {
			return 0, err
		}
		return r.attrTimes.Extract(envelope)
	default:
		return r.now().UnixNano(), nil
	}
}

// resolveHost returns the caption of the object referenced by attr, looked
// up in the named collections. Missing or dangling references resolve to
// the placeholder.
func (r *Renderer) resolveHost(e types.Entity, attr string, resources ...string) string {
	id, err := e.String(attr)
	if err != nil {
		return Placeholder
	}
	name, ok := r.catalog.Resolve(id, resources...)
	if !ok {
		r.logger.Debug("render: unresolved reference",
			"kind", e.Kind, "id", e.ID(), "attr", attr, "ref", id)
		return Placeholder
	}
	return name
}

// fieldValue renders a JSON scalar as a line-protocol field value.
func fieldValue(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Raw, true
	case gjson.True:
		return "true", true
	case gjson.False:
		return "false", true
	case gjson.String:
		return quote(v.String()), true
	}
	return "", false
}
