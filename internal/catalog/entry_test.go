package catalog

import (
	"math"
	"testing"
)

func TestGainFactor(t *testing.T) {
	gain := func(db float64) *float64 { return &db }

	tests := []struct {
		name string
		gain *float64
		want float64
	}{
		{"absent", nil, 1.0},
		{"zero", gain(0), 1.0},
		{"minus six", gain(-6), 0.501187},
		{"plus twenty", gain(20), 10.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Entry{ReplayGain: tt.gain}
			if got := e.GainFactor(); math.Abs(got-tt.want) > 1e-5 {
				t.Errorf("GainFactor() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestIndex(t *testing.T) {
	idx := Index([]Entry{{ID: 7}, {ID: 3}, {ID: 9}})
	if idx[7] != 0 || idx[3] != 1 || idx[9] != 2 {
		t.Errorf("Index() = %v", idx)
	}
	if _, ok := idx[1]; ok {
		t.Error("Index() should not contain unknown ID")
	}
}
