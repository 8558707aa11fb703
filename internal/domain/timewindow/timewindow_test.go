package timewindow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 570},
		{in: "9:05", want: 545},
		{in: "24:00", want: MinutesPerDay},
		{in: "24:01", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "1200", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in != "9:05", FormatClock(got) == tt.in)
		})
	}
}

func TestIntervalOverlapsIsHalfOpen(t *testing.T) {
	a := Interval{Start: 600, End: 660}

	assert.False(t, a.Overlaps(Interval{Start: 660, End: 720}), "touching at end")
	assert.False(t, a.Overlaps(Interval{Start: 540, End: 600}), "touching at start")
	assert.True(t, a.Overlaps(Interval{Start: 659, End: 700}))
	assert.True(t, a.Overlaps(Interval{Start: 610, End: 620}))
	assert.True(t, a.Overlaps(a))
}

func TestClip(t *testing.T) {
	window := Interval{Start: 540, End: 1080}

	got, ok := Interval{Start: 480, End: 600}.Clip(window)
	require.True(t, ok)
	assert.Equal(t, Interval{Start: 540, End: 600}, got)

	_, ok = Interval{Start: 1080, End: 1140}.Clip(window)
	assert.False(t, ok)

	got, ok = Interval{Start: 720, End: 780}.Clip(window)
	require.True(t, ok)
	assert.Equal(t, Interval{Start: 720, End: 780}, got)
}

func TestGrid(t *testing.T) {
	assert.Equal(t, []int{540, 570, 600}, Grid(Interval{Start: 540, End: 620}, 30))
	assert.Nil(t, Grid(Interval{Start: 600, End: 600}, 30))
	assert.Nil(t, Grid(Interval{Start: 540, End: 600}, 0))
}

func TestOverlapsAnyAndClocks(t *testing.T) {
	set := []Interval{{Start: 720, End: 780}, {Start: 900, End: 930}}

	assert.True(t, OverlapsAny(Block(750, 30), set))
	assert.False(t, OverlapsAny(Block(780, 120), set))
	assert.Equal(t, []ClockRange{
		{Start: "12:00", End: "13:00"},
		{Start: "15:00", End: "15:30"},
	}, Clocks(set))
	assert.Equal(t, "12:00-13:00", set[0].String())
}
