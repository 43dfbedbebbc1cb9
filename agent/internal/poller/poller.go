package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lblanc/grafana-integration/agent/internal/catalog"
	"github.com/lblanc/grafana-integration/agent/internal/compute"
	"github.com/lblanc/grafana-integration/agent/internal/render"
	"github.com/lblanc/grafana-integration/agent/internal/scraper"
	"github.com/lblanc/grafana-integration/agent/internal/security"
	"github.com/lblanc/grafana-integration/pkg/types"
)

// ErrNoKinds is returned by RunOnce when no resource kind is enabled.
var ErrNoKinds = errors.New("no resource kinds enabled")

// Fetcher retrieves collections and performance samples from the REST
// service. *scraper.Client satisfies it.
type Fetcher interface {
	FetchAll(ctx context.Context, resources []string) (map[string]*scraper.Collection, error)
	AttachPerf(ctx context.Context, entities []types.Entity) ([]types.Object, []types.Failure)
}

// Publisher delivers a batch of lines. *shipper.Shipper satisfies it.
type Publisher interface {
	Publish(ctx context.Context, lines []types.MetricLine) (*types.PublishOutcome, error)
}

// CycleObserver is told about every finished cycle with the rendered line
// count per kind. *selfmetrics.Metrics satisfies it.
type CycleObserver interface {
	ObserveCycle(rep *types.Report, linesByKind map[types.Kind]int)
}

// Poller runs poll cycles: fetch, join, render, publish, report.
type Poller struct {
	fetch    Fetcher
	publish  Publisher
	times    render.TimeExtractor
	monTimes render.TimeExtractor
	grader   *compute.Engine

	includeSuspect bool
	certEndpoint   string
	certInsecure   bool

	observers []CycleObserver
	hooks     []func(*types.Report)

	now   func() time.Time
	newID func() string
	check func(ctx context.Context, endpoint string, insecure bool) *types.CertStatus

	mu    sync.RWMutex
	kinds []types.Kind
}

// Option configures a Poller.
type Option func(*Poller)

// WithTimeExtractor sets how performance timestamps are decoded.
func WithTimeExtractor(te render.TimeExtractor) Option {
	return func(p *Poller) { p.times = te }
}

// WithMonitorTimeExtractor sets how the monitors' TimeStamp is decoded.
// It defaults to the performance timestamp extractor.
func WithMonitorTimeExtractor(te render.TimeExtractor) Option {
	return func(p *Poller) { p.monTimes = te }
}

// WithSuspect renders objects built from non-2xx responses.
func WithSuspect(include bool) Option {
	return func(p *Poller) { p.includeSuspect = include }
}

// WithCertCheck inspects the TLS certificate of endpoint at the start of
// each cycle. Non-https endpoints are ignored.
func WithCertCheck(endpoint string, insecure bool) Option {
	return func(p *Poller) {
		if u, err := url.Parse(endpoint); err == nil && u.Scheme == "https" {
			p.certEndpoint = endpoint
			p.certInsecure = insecure
		}
	}
}

// WithObserver reports every finished cycle to obs.
func WithObserver(obs CycleObserver) Option {
	return func(p *Poller) { p.observers = append(p.observers, obs) }
}

// WithReportHook calls fn with every finished report, after observers.
func WithReportHook(fn func(*types.Report)) Option {
	return func(p *Poller) { p.hooks = append(p.hooks, fn) }
}

// WithClock sets the clock used for run timing and state-only timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// New returns a Poller collecting kinds through f and delivering through pub.
func New(f Fetcher, pub Publisher, kinds []types.Kind, opts ...Option) *Poller {
	p := &Poller{
		fetch:   f,
		publish: pub,
		times:   render.DateEnvelope{},
		grader:  compute.NewEngine(),
		now:     time.Now,
		newID:   uuid.NewString,
		check:   security.Check,
	}
	for _, o := range opts {
		o(p)
	}
	p.SetKinds(kinds)
	return p
}

// SetKinds replaces the enabled kinds. The change applies from the next
// cycle.
func (p *Poller) SetKinds(kinds []types.Kind) {
	cp := append([]types.Kind(nil), kinds...)
	p.mu.Lock()
	p.kinds = cp
	p.mu.Unlock()
}

// Kinds returns the enabled kinds.
func (p *Poller) Kinds() []types.Kind {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]types.Kind(nil), p.kinds...)
}

// Run executes a cycle immediately and then every interval until ctx is
// cancelled. Cycle errors are logged and recorded in the report; they do
// not stop the loop.
func (p *Poller) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.RunOnce(ctx); err != nil && ctx.Err() == nil {
			slog.Error("poller: cycle failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce executes one poll cycle and returns its report. The error is the
// reason the cycle failed, if it did; the report is returned either way.
func (p *Poller) RunOnce(ctx context.Context) (*types.Report, error) {
	start := p.now()
	rep := &types.Report{
		RunID:     p.newID(),
		StartedAt: start,
		Resources: make(map[string]int),
	}
	log := slog.With("run_id", rep.RunID)

	linesByKind, err := p.cycle(ctx, log, rep)
	if err != nil {
		rep.State = types.CycleFailed
		rep.Error = err.Error()
	}
	rep.Duration = p.now().Sub(start)

	grade := p.grader.Process(rep)
	rep.Health, rep.Score, rep.UptimePct = grade.State, grade.Score, grade.UptimePct

	for _, obs := range p.observers {
		obs.ObserveCycle(rep, linesByKind)
	}
	for _, fn := range p.hooks {
		fn(rep)
	}

	log.Info("poller: cycle finished",
		"state", rep.State,
		"health", rep.Health,
		"objects", rep.Objects,
		"lines", rep.Lines,
		"failures", len(rep.Failures),
		"duration", rep.Duration)
	return rep, err
}

func (p *Poller) cycle(ctx context.Context, log *slog.Logger, rep *types.Report) (map[types.Kind]int, error) {
	kinds := p.Kinds()
	if len(kinds) == 0 {
		return nil, ErrNoKinds
	}

	if p.certEndpoint != "" {
		rep.Cert = p.check(ctx, p.certEndpoint, p.certInsecure)
		if rep.Cert != nil && rep.Cert.Status != security.StatusValid {
			log.Warn("poller: REST certificate needs attention",
				"status", rep.Cert.Status, "days_left", rep.Cert.DaysLeft)
		}
	}

	resources := Plan(kinds)
	cols, err := p.fetch.FetchAll(ctx, resources)
	if err != nil {
		return nil, fmt.Errorf("collect inventory: %w", err)
	}

	collections := make(map[string][]types.Entity, len(cols))
	status := make(map[string]int, len(cols))
	for name, col := range cols {
		collections[name] = col.Entities
		status[name] = col.StatusCode
		rep.Resources[name] = len(col.Entities)
	}
	cat := catalog.New(collections)

	var joinable, direct []types.Entity
	for _, k := range kinds {
		for _, e := range cat.Entities(k.Resource()) {
			e.Kind = k
			if e.Suspect {
				rep.Failures = append(rep.Failures, types.Failure{
					Kind:    k,
					ID:      e.ID(),
					Caption: e.Caption(),
					Reason:  fmt.Sprintf("unexpected status %d", status[k.Resource()]),
					Suspect: true,
				})
			}
			if render.NeedsSample(k) {
				joinable = append(joinable, e)
			} else {
				direct = append(direct, e)
			}
		}
	}

	objs, failures := p.fetch.AttachPerf(ctx, joinable)
	rep.Failures = append(rep.Failures, failures...)
	for _, e := range direct {
		objs = append(objs, types.Object{Entity: e})
	}
	for _, o := range objs {
		if o.Suspect {
			rep.Suspect++
		}
	}
	rep.Objects = len(objs)

	start := rep.StartedAt
	r := render.New(cat, p.times,
		render.WithSuspect(p.includeSuspect),
		render.WithAttrTimes(p.monTimes),
		render.WithClock(func() time.Time { return start }),
		render.WithLogger(log))
	lines, stats := r.RenderAll(objs)
	rep.Rendered = stats.Rendered
	rep.Lines = len(lines)

	outcome, err := p.publish.Publish(ctx, lines)
	rep.Publish = outcome
	if err != nil {
		return stats.Lines, fmt.Errorf("publish: %w", err)
	}

	rep.State = types.CycleOK
	if len(rep.Failures) > 0 || stats.Skipped > 0 || rep.Suspect > 0 {
		rep.State = types.CyclePartial
	}
	return stats.Lines, nil
}
