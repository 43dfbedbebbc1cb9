package types

import (
	"strconv"
	"strings"
)

// Tag is one key=value pair of a metric line. Value is stored escaped.
type Tag struct {
	Key   string
	Value string
}

// MetricLine is one InfluxDB line-protocol record carrying a single field.
type MetricLine struct {
	Measurement string
	Tags        []Tag
	Field       string
	Value       string
	Timestamp   int64 // nanoseconds
}

// String renders the record as "measurement,tag=v,... field=value ts".
func (l MetricLine) String() string {
	var b strings.Builder
	b.WriteString(l.Measurement)
	for _, t := range l.Tags {
		b.WriteByte(',')
		b.WriteString(t.Key)
		b.WriteByte('=')
		b.WriteString(t.Value)
	}
	b.WriteByte(' ')
	b.WriteString(l.Field)
	b.WriteByte('=')
	b.WriteString(l.Value)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(l.Timestamp, 10))
	return b.String()
}

// Tag returns the value of the named tag and whether it is present.
func (l MetricLine) Tag(key string) (string, bool) {
	for _, t := range l.Tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}
