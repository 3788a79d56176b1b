package fuzzydate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAndString(t *testing.T) {
	tests := []struct {
		year, month, day int
		want             string
	}{
		{2024, 0, 0, "2024"},
		{2024, 3, 0, "2024-03"},
		{2024, 3, 5, "2024-03-05"},
		{0, 3, 5, ""},
		{2024, 0, 5, "2024"},
	}
	for _, tt := range tests {
		got := Build(tt.year, tt.month, tt.day).String()
		assert.Equal(t, tt.want, got, "Build(%d, %d, %d)", tt.year, tt.month, tt.day)
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []string{"", "1999", "2024-03", "2024-03-05", "2024-12-31"} {
		d, err := Parse(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, d.String())
	}
}

func TestParseNormalizesPadding(t *testing.T) {
	d, err := Parse("2024-3-5")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", d.String())
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"abc", "2024-xx", "2024-01-02-03", "2024--01"} {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrInvalid, s)
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2024, 2))
	assert.Equal(t, 28, DaysInMonth(2023, 2))
	assert.Equal(t, 28, DaysInMonth(1900, 2))
	assert.Equal(t, 29, DaysInMonth(2000, 2))
	assert.Equal(t, 30, DaysInMonth(2023, 4))
	assert.Equal(t, 31, DaysInMonth(0, 2))
	assert.Equal(t, 31, DaysInMonth(2023, 0))
}

func TestClampDay(t *testing.T) {
	assert.Equal(t, Date{Year: 2023, Month: 2}, ClampDay(Date{Year: 2023, Month: 2, Day: 30}))
	assert.Equal(t, Date{Year: 2024, Month: 2, Day: 29}, ClampDay(Date{Year: 2024, Month: 2, Day: 29}))
}

func TestTime(t *testing.T) {
	tm, ok := MustParse("2024").Time(time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), tm)

	tm, ok = MustParse("2024-06").Time(time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), tm)

	_, ok = Date{Year: 2023, Month: 2, Day: 30}.Time(time.UTC)
	assert.False(t, ok)
	_, ok = Date{Year: 2023, Month: 13}.Time(time.UTC)
	assert.False(t, ok)
	_, ok = Date{}.Time(time.UTC)
	assert.False(t, ok)
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare(MustParse("2023"), MustParse("2023-01")))
	assert.Equal(t, 1, Compare(MustParse("2024-02-01"), MustParse("2024-01-31")))
	assert.Equal(t, 0, Compare(MustParse("2024-02"), MustParse("2024-02")))
}

func TestJSONAndSQL(t *testing.T) {
	type wrapper struct {
		D Date `json:"d"`
	}
	raw, err := json.Marshal(wrapper{D: MustParse("2024-03")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-03"}`, string(raw))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2021-11-02"}`), &w))
	assert.Equal(t, Date{Year: 2021, Month: 11, Day: 2}, w.D)

	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var d Date
	require.NoError(t, d.Scan([]byte("2020-05")))
	assert.Equal(t, "2020-05", d.String())
	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
}

func TestParseValid(t *testing.T) {
	for _, s := range []string{"", "2024", "2024-02", "2024-02-29", "2023-12-31", "2024-4-5"} {
		_, err := ParseValid(s)
		assert.NoError(t, err, s)
	}
	for _, s := range []string{"2023-02-29", "2024-13", "2024-04-31", "2024-00", "2024-05-00", "0000-05", "2024-1-1-1", "soon"} {
		_, err := ParseValid(s)
		assert.ErrorIs(t, err, ErrInvalid, s)
	}

	d, err := ParseValid(" 2024-4-5 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-04-05", d.String())
}
