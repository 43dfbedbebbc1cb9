package compute

// Weight constants for the cycle score formula.
// They must sum to 1.0.
const (
	weightDrop     = 0.40
	weightDelivery = 0.30
	weightSuspect  = 0.20
	weightUptime   = 0.10
)

// State constants returned by the score calculator.
const (
	StateHealthy  = "healthy"
	StateDegraded = "degraded"
	StateCritical = "critical"
	StateUnknown  = "unknown"
)

// Thresholds that map a score to a health state.
const (
	ThresholdHealthy  = 85.0
	ThresholdDegraded = 60.0
)

// Input holds the normalised values fed into the score formula.
// All percentage fields are in the range 0–100.
type Input struct {
	// Objects is the number of objects the cycle tried to render. Zero
	// means nothing was collected and the state is unknown.
	Objects int

	// DropPct is the percentage of objects that produced no lines, either
	// because their sample could not be joined or because rendering
	// rejected them.
	DropPct float64

	// SuspectPct is the percentage of objects built from a response with a
	// non-2xx status.
	SuspectPct float64

	// DeliveryPct is 100 when the batch was accepted by InfluxDB, 0 when it
	// was rejected.
	DeliveryPct float64

	// UptimePct is the percentage of recent cycles that were not aborted.
	UptimePct float64
}

// Output is the result of the score calculation.
type Output struct {
	// Score is the composite health score in the range 0–100.
	Score float64

	// State is the health state derived from Score.
	State string

	// The four factor values (each 0–1) used to compute Score.
	DropFactor     float64
	DeliveryFactor float64
	SuspectFactor  float64
	UptimeFactor   float64
}

// Compute calculates the cycle score from the given inputs.
//
//	score = (
//	    (1 - drop_pct/100)     * 0.40  +
//	    delivery_pct/100       * 0.30  +
//	    (1 - suspect_pct/100)  * 0.20  +
//	    uptime_pct/100         * 0.10
//	) * 100
func Compute(in Input) Output {
	if in.Objects == 0 {
		return Output{State: StateUnknown}
	}

	dropFactor := 1 - clamp01(in.DropPct/100)
	deliveryFactor := clamp01(in.DeliveryPct / 100)
	suspectFactor := 1 - clamp01(in.SuspectPct/100)
	uptimeFactor := clamp01(in.UptimePct / 100)

	score := (dropFactor*weightDrop +
		deliveryFactor*weightDelivery +
		suspectFactor*weightSuspect +
		uptimeFactor*weightUptime) * 100

	return Output{
		Score:          score,
		State:          stateFromScore(score),
		DropFactor:     dropFactor,
		DeliveryFactor: deliveryFactor,
		SuspectFactor:  suspectFactor,
		UptimeFactor:   uptimeFactor,
	}
}

// stateFromScore maps a numeric score to a named health state.
func stateFromScore(score float64) string {
	switch {
	case score >= ThresholdHealthy:
		return StateHealthy
	case score >= ThresholdDegraded:
		return StateDegraded
	default:
		return StateCritical
	}
}

// clamp01 restricts v to the range [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
