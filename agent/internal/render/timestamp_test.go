package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateEnvelope(t *testing.T) {
	cases := map[string]struct {
		in      string
		want    int64
		wantErr bool
	}{
		"plain":        {in: "/Date(1600000000123)/", want: 1600000000123000000},
		"offset":       {in: "/Date(1600000000123+0000)/", want: 1600000000123000000},
		"neg offset":   {in: "/Date(1600000000123-0500)/", want: 1600000000123000000},
		"negative":     {in: "/Date(-1000)/", want: -1000000000},
		"empty":        {in: "", wantErr: true},
		"garbage":      {in: "/Date(abc)/", wantErr: true},
		"no envelope":  {in: "1600000000123", wantErr: true},
		"out of range": {in: "/Date(99999999999999999)/", wantErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := DateEnvelope{}.Extract(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrEnvelope)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFixedEnvelope(t *testing.T) {
	short := FixedEnvelope{Prefix: 6, Suffix: 2}
	got, err := short.Extract("/Date(1600000000123)/")
	require.NoError(t, err)
	assert.Equal(t, int64(1600000000123000000), got)

	long := FixedEnvelope{Prefix: 6, Suffix: 7}
	got, err = long.Extract("/Date(1600000000123+0000)/")
	require.NoError(t, err)
	assert.Equal(t, int64(1600000000123000000), got)

	_, err = short.Extract("/Date(1600000000123+0000)/")
	assert.ErrorIs(t, err, ErrEnvelope)

	_, err = long.Extract("/Date()/")
	assert.ErrorIs(t, err, ErrEnvelope)
}

func TestFixedEnvelopeRejectsTruncatedDigits(t *testing.T) {
	// A suffix of 7 on an envelope without offset cuts into the number.
	_, err := FixedEnvelope{Prefix: 6, Suffix: 7}.Extract("/Date(1600000000123)/")
	assert.ErrorIs(t, err, ErrEnvelope)

	_, err = FixedEnvelope{Prefix: 5, Suffix: 2}.Extract("/Date(1600000000123)/")
	assert.ErrorIs(t, err, ErrEnvelope, "non-digit left in the value")

	_, err = FixedEnvelope{Prefix: 6, Suffix: 2}.Extract("/Date(-1600000000)/")
	assert.ErrorIs(t, err, ErrEnvelope)
}

func TestExtractIsDeterministic(t *testing.T) {
	for _, ex := range []TimeExtractor{DateEnvelope{}, FixedEnvelope{Prefix: 6, Suffix: 2}} {
		a, err := ex.Extract("/Date(1600000000123)/")
		require.NoError(t, err)
		b, err := ex.Extract("/Date(1600000000123)/")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestNewTimeExtractor(t *testing.T) {
	ex, err := NewTimeExtractor("auto", 0, 0)
	require.NoError(t, err)
	assert.IsType(t, DateEnvelope{}, ex)

	ex, err = NewTimeExtractor("fixed", 6, 7)
	require.NoError(t, err)
	assert.Equal(t, FixedEnvelope{Prefix: 6, Suffix: 7}, ex)

	_, err = NewTimeExtractor("fixed", -1, 2)
	assert.Error(t, err)

	_, err = NewTimeExtractor("regex", 0, 0)
	assert.Error(t, err)
}
