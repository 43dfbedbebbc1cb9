package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// payloadFunc builds the request body of one webhook type.
type payloadFunc func(a *Alert) interface{}

var payloads = map[string]payloadFunc{
	"slack": slackPayload,
	"teams": teamsPayload,
	"http":  httpPayload,
}

// deliver posts a to every configured webhook. Errors are logged.
func (e *Engine) deliver(a *Alert) {
	for _, wh := range e.webhooks {
		url := wh.URL()
		if url == "" {
			continue
		}
		build, ok := payloads[wh.Type]
		if !ok {
			slog.Warn("alerts: unknown webhook type, skipping", "type", wh.Type)
			continue
		}

		if err := e.post(url, build(a)); err != nil {
			slog.Error("alerts: webhook delivery failed",
				"type", wh.Type, "rule", a.RuleName, "run_id", a.RunID, "err", err)
			continue
		}
		slog.Debug("alerts: webhook delivered", "type", wh.Type, "rule", a.RuleName, "state", a.State)
	}
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Fields []slackField `json:"fields"`
}

type slackMessage struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

func slackPayload(a *Alert) interface{} {
	facts := runFacts(a)
	fields := make([]slackField, 0, len(facts))
	for _, f := range facts {
		fields = append(fields, slackField{Title: f.Name, Value: f.Value, Short: true})
	}
	return slackMessage{
		Text:        fmt.Sprintf("*%s* %s", stateLabel(a), a.Message),
		Attachments: []slackAttachment{{Color: "#" + severityColor(a), Fields: fields}},
	}
}

type teamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type teamsSection struct {
	ActivityTitle string      `json:"activityTitle"`
	Facts         []teamsFact `json:"facts"`
}

type teamsCard struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor"`
	Summary    string         `json:"summary"`
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	Sections   []teamsSection `json:"sections"`
}

func teamsPayload(a *Alert) interface{} {
	return teamsCard{
		Type:       "MessageCard",
		Context:    "http://schema.org/extensions",
		ThemeColor: severityColor(a),
		Summary:    a.RuleName,
		Title:      fmt.Sprintf("DataCore poller alert: %s (%s)", a.RuleName, a.State),
		Text:       a.Message,
		Sections:   []teamsSection{{ActivityTitle: "Run " + a.RunID, Facts: runFacts(a)}},
	}
}

type httpMessage struct {
	Source string `json:"source"`
	Alert  *Alert `json:"alert"`
}

func httpPayload(a *Alert) interface{} {
	return httpMessage{Source: "datacore-poller", Alert: a}
}

// runFacts lists the cycle figures shown in chat notifications.
func runFacts(a *Alert) []teamsFact {
	facts := []teamsFact{
		{"Condition", a.Condition},
		{"Value", strconv.FormatFloat(a.Value, 'f', 2, 64)},
		{"Cycle state", a.Run.State},
		{"Health", fmt.Sprintf("%s (%.0f)", a.Run.Health, a.Run.Score)},
		{"Objects", strconv.Itoa(a.Run.Objects)},
		{"Lines", strconv.Itoa(a.Run.Lines)},
		{"Failures", strconv.Itoa(a.Run.Failures)},
	}
	if a.Run.Error != "" {
		facts = append(facts, teamsFact{"Error", a.Run.Error})
	}
	return facts
}

func (e *Engine) post(url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func stateLabel(a *Alert) string {
	if a.State == StateResolved {
		return "[RESOLVED]"
	}
	switch a.Severity {
	case "critical":
		return "[CRITICAL]"
	case "warning":
		return "[WARNING]"
	default:
		return "[INFO]"
	}
}

// severityColor is green once resolved, otherwise keyed on severity.
func severityColor(a *Alert) string {
	if a.State == StateResolved {
		return "2EB67D"
	}
	switch a.Severity {
	case "critical":
		return "FF4F6A"
	case "warning":
		return "FFAB40"
	default:
		return "00D4FF"
	}
}
