package instruction

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Instruction)
		wantErr string
	}{
		{"valid", func(*Instruction) {}, ""},
		{"zero reward", func(in *Instruction) { in.Reward = 0 }, "Reward must be greater than 0"},
		{"beta zero", func(in *Instruction) { in.Beta = 0 }, "Beta must be greater than 0"},
		{"beta one", func(in *Instruction) { in.Beta = 1 }, "Beta must be less than 1"},
		{"negative duration", func(in *Instruction) { in.Duration = -1 }, "Duration must be at least 0"},
		{"zero duration", func(in *Instruction) { in.Duration = 0 }, ""},
		{"self dependency", func(in *Instruction) { *in = in.After(in.ID) }, "must not reference itself"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Instruction{ID: 4, Destination: 1, Reward: 5, Beta: 0.9, Duration: 2}
			tt.mutate(&in)

			err := Validate(in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDependsOn(t *testing.T) {
	in := Instruction{ID: 2}
	_, ok := in.DependsOn()
	assert.False(t, ok)

	gated := in.After(1)
	prev, ok := gated.DependsOn()
	assert.True(t, ok)
	assert.Equal(t, ID(1), prev)

	_, ok = in.DependsOn()
	assert.False(t, ok, "After must not mutate the receiver")
}

func TestExecutionTime(t *testing.T) {
	in := Instruction{Duration: 1.5}
	assert.Equal(t, 1500*time.Millisecond, in.ExecutionTime())
}

func TestWireNames(t *testing.T) {
	raw := `{"id":3,"destination":5,"r":2.5,"b":0.8,"duration":3,"prev_id":1,"function":2,"source":"Charlie","target":"Bob"}`

	var in Instruction
	require.NoError(t, json.NewDecoder(strings.NewReader(raw)).Decode(&in))

	assert.Equal(t, ID(3), in.ID)
	assert.Equal(t, 2.5, in.Reward)
	assert.Equal(t, 0.8, in.Beta)
	prev, ok := in.DependsOn()
	assert.True(t, ok)
	assert.Equal(t, ID(1), prev)
	assert.Equal(t, "Charlie", in.Source)
}
