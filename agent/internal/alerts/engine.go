package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lblanc/grafana-integration/agent/internal/config"
	"github.com/lblanc/grafana-integration/pkg/types"
)

const (
	defaultCooldown = 15 * time.Minute
	maxHistoryLen   = 200
	recentWindow    = time.Hour
)

// Alert states.
const (
	StateFiring   = "firing"
	StateResolved = "resolved"
)

// RunContext is the part of a cycle report an alert carries along.
type RunContext struct {
	State     string  `json:"state"`
	Health    string  `json:"health"`
	Score     float64 `json:"score"`
	Objects   int     `json:"objects"`
	Lines     int     `json:"lines"`
	Failures  int     `json:"failures"`
	Suspect   int     `json:"suspect"`
	StartedAt string  `json:"started_at"`
	Error     string  `json:"error,omitempty"`
}

func runContext(rep *types.Report) RunContext {
	return RunContext{
		State:     rep.State,
		Health:    rep.Health,
		Score:     rep.Score,
		Objects:   rep.Objects,
		Lines:     rep.Lines,
		Failures:  len(rep.Failures),
		Suspect:   rep.Suspect,
		StartedAt: rep.StartedAt.UTC().Format(time.RFC3339),
		Error:     rep.Error,
	}
}

// Alert is one alert event produced by the rule engine.
type Alert struct {
	ID         string     `json:"id"`
	RuleName   string     `json:"rule_name"`
	Condition  string     `json:"condition"`
	RunID      string     `json:"run_id"`
	Run        RunContext `json:"run"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Value      float64    `json:"value"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"`
}

// Engine evaluates alert rules against cycle reports. It is safe for
// concurrent use.
type Engine struct {
	rules    []config.AlertRule
	webhooks []config.WebhookConfig
	client   *http.Client
	now      func() time.Time

	// dispatch runs a delivery; tests replace it to deliver synchronously.
	dispatch func(func())

	mu       sync.Mutex
	active   map[string]*Alert
	lastFire map[string]time.Time
	history  []*Alert
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithHTTPClient overrides the webhook HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(e *Engine) { e.client = hc }
}

// New creates an Engine from the alerts configuration. An Engine without
// rules is valid and Evaluate is then a no-op.
func New(cfg config.AlertsConfig, opts ...Option) *Engine {
	e := &Engine{
		rules:    cfg.Rules,
		webhooks: cfg.Webhooks,
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
		dispatch: func(f func()) { go f() },
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate tests every rule against rep. Firing rules are recorded and
// delivered asynchronously; rules that were firing and no longer match are
// resolved.
func (e *Engine) Evaluate(rep *types.Report) {
	if len(e.rules) == 0 || rep == nil {
		return
	}

	now := e.now()
	for _, rule := range e.rules {
		fires, value := evalCondition(rule.Condition, rep)
		if fires {
			e.fire(rule, rep, value, now)
		} else {
			e.resolve(rule.Name, rep, now)
		}
	}
}

func (e *Engine) fire(rule config.AlertRule, rep *types.Report, value float64, now time.Time) {
	runID := rep.RunID
	cooldown := rule.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	sev := rule.Severity
	if sev == "" {
		sev = "warning"
	}

	e.mu.Lock()
	if last, ok := e.lastFire[rule.Name]; ok && now.Sub(last) < cooldown {
		e.mu.Unlock()
		return
	}
	a := &Alert{
		ID:        uuid.NewString(),
		RuleName:  rule.Name,
		Condition: rule.Condition,
		RunID:     runID,
		Run:       runContext(rep),
		Severity:  sev,
		Value:     value,
		Message:   fmt.Sprintf("[%s] %s fired on run %s: %s (value %.2f)", sev, rule.Name, runID, rule.Condition, value),
		FiredAt:   now,
		State:     StateFiring,
	}
	e.active[rule.Name] = a
	e.lastFire[rule.Name] = now
	cp := *a
	e.mu.Unlock()

	slog.Warn("alerts: fired", "rule", rule.Name, "run_id", runID, "value", value, "severity", sev)
	e.dispatch(func() { e.deliver(&cp) })
}

func (e *Engine) resolve(name string, rep *types.Report, now time.Time) {
	e.mu.Lock()
	a, ok := e.active[name]
	if !ok {
		e.mu.Unlock()
		return
	}
	resolved := now
	a.State = StateResolved
	a.ResolvedAt = &resolved
	a.RunID = rep.RunID
	a.Run = runContext(rep)
	a.Message = fmt.Sprintf("[resolved] %s cleared on run %s: %s", name, rep.RunID, a.Condition)
	delete(e.active, name)

	e.history = append(e.history, a)
	if len(e.history) > maxHistoryLen {
		e.history = e.history[len(e.history)-maxHistoryLen:]
	}
	cp := *a
	e.mu.Unlock()

	slog.Info("alerts: resolved", "rule", name)
	e.dispatch(func() { e.deliver(&cp) })
}

// Active returns copies of all firing alerts plus those resolved within the
// last hour, newest first.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-recentWindow)
	out := make([]*Alert, 0, len(e.active))
	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FiredAt.After(out[j].FiredAt) })
	return out
}
