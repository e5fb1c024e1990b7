package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"string seconds", `"1s"`, time.Second, false},
		{"string composite", `"1m30s"`, 90 * time.Second, false},
		{"nanoseconds", `1500000000`, 1500 * time.Millisecond, false},
		{"zero", `0`, 0, false},
		{"bad string", `"soon"`, 0, true},
		{"bool", `true`, 0, true},
		{"not json", `{`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_InStruct(t *testing.T) {
	var cfg struct {
		Timeout Duration `json:"timeout"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"timeout":"250ms"}`), &cfg))
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout.Duration)
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 3 * time.Second})
	require.NoError(t, err)
	assert.JSONEq(t, `"3s"`, string(b))
}
