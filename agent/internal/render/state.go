package render

// Monitor states reported by DataCore monitors.
const (
	MonitorUndefined = 1
	MonitorHealthy   = 2
	MonitorAttention = 4
	MonitorWarning   = 8
	MonitorCritical  = 16
)

// MonitorState returns the name of a monitor state value. Unknown values
// are reported as Undefined.
func MonitorState(v int64) string {
	switch v {
	case MonitorHealthy:
		return "Healthy"
	case MonitorAttention:
		return "Attention"
	case MonitorWarning:
		return "Warning"
	case MonitorCritical:
		return "Critical"
	default:
		return "Undefined"
	}
}
