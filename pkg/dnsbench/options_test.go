package dnsbench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions_withDefaults_histogramBounds(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantMin time.Duration
		wantMax time.Duration
	}{
		{
			name:    "defaults",
			opts:    Options{},
			wantMin: DefaultHistMin,
			wantMax: DefaultHistMax,
		},
		{
			name:    "only min set",
			opts:    Options{HistMin: time.Millisecond},
			wantMin: time.Millisecond,
			wantMax: DefaultHistMax,
		},
		{
			name:    "only max set",
			opts:    Options{HistMax: time.Second},
			wantMin: DefaultHistMin,
			wantMax: time.Second,
		},
		{
			name:    "both set",
			opts:    Options{HistMin: time.Microsecond, HistMax: 10 * time.Second},
			wantMin: time.Microsecond,
			wantMax: 10 * time.Second,
		},
		{
			name:    "negative min",
			opts:    Options{HistMin: -time.Second},
			wantMin: DefaultHistMin,
			wantMax: DefaultHistMax,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts.withDefaults()

			assert.Equal(t, tt.wantMin, opts.HistMin)
			assert.Equal(t, tt.wantMax, opts.HistMax)
			assert.Equal(t, DefaultHistPrecision, opts.HistPrecision)
		})
	}
}
