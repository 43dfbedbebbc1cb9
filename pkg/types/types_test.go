package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestKind_Resource(t *testing.T) {
	cases := map[Kind]string{
		KindServers:           "servers",
		KindServerState:       "servers",
		KindVirtualDiskState:  "virtualdisks",
		KindMonitors:          "monitors",
		Kind("targetdevices"): "targetdevices",
	}
	for k, want := range cases {
		assert.Equal(t, want, k.Resource(), k)
	}
}

func TestEntity_Accessors(t *testing.T) {
	e := Entity{Kind: KindPools, Raw: gjson.Parse(`{
		"Id": "P1", "Caption": "Pool 1", "ExtendedCaption": "Pool 1 on Srv A",
		"ServerId": "S1", "ChunkSize": {"Value": 134217728}, "Serial": null,
		"Tiers": [1, 2], "Enabled": true
	}`)}

	assert.Equal(t, "P1", e.ID())
	assert.Equal(t, "Pool 1", e.Caption())
	assert.Equal(t, "Pool 1 on Srv A", e.ExtendedCaption())

	v, err := e.Value("ChunkSize.Value")
	require.NoError(t, err)
	assert.Equal(t, "134217728", v.Raw)

	s, err := e.String("Enabled")
	require.NoError(t, err)
	assert.Equal(t, "true", s)

	_, err = e.String("Serial")
	assert.True(t, errors.Is(err, ErrFieldAbsent))

	_, err = e.String("Missing")
	assert.True(t, errors.Is(err, ErrFieldAbsent))

	_, err = e.String("Tiers")
	assert.True(t, errors.Is(err, ErrFieldMalformed))
}

func TestSample_CountersInDocumentOrder(t *testing.T) {
	s := Sample{Raw: gjson.Parse(`{
		"__type": "ServerPerformance:#DataCore",
		"TotalReads": 10,
		"CollectionTime": "/Date(1600000000123)/",
		"CacheHits": 7,
		"AvgLatency": 0.25
	}`)}

	var names []string
	s.Counters(func(name string, _ gjson.Result) bool {
		names = append(names, name)
		return true
	})
	assert.Equal(t, []string{"TotalReads", "CacheHits", "AvgLatency"}, names)

	ct, err := s.CollectionTime()
	require.NoError(t, err)
	assert.Equal(t, "/Date(1600000000123)/", ct)
}

func TestSample_CollectionTimeMalformed(t *testing.T) {
	_, err := Sample{Raw: gjson.Parse(`{"CollectionTime": 12}`)}.CollectionTime()
	assert.True(t, errors.Is(err, ErrFieldMalformed))

	_, err = Sample{Raw: gjson.Parse(`{}`)}.CollectionTime()
	assert.True(t, errors.Is(err, ErrFieldAbsent))
}

func TestMetricLine_String(t *testing.T) {
	l := MetricLine{
		Measurement: "DataCore_Servers",
		Tags: []Tag{
			{Key: "instance", Value: `Srv\ A\ Ext`},
			{Key: "host", Value: `Srv\ A`},
		},
		Field:     "IOPS",
		Value:     "500",
		Timestamp: 1600000000123000000,
	}
	assert.Equal(t, `DataCore_Servers,instance=Srv\ A\ Ext,host=Srv\ A IOPS=500 1600000000123000000`, l.String())

	v, ok := l.Tag("host")
	assert.True(t, ok)
	assert.Equal(t, `Srv\ A`, v)
	_, ok = l.Tag("id")
	assert.False(t, ok)
}
