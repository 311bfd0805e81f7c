package evaluation

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/tamp-planner/pkg/instruction"
)

func TestRecorder_DiscountsByElapsedSteps(t *testing.T) {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRecorder(epoch, time.Second)

	earned := r.Record(instruction.Instruction{ID: 1, Reward: 10, Beta: 0.5}, epoch.Add(2*time.Second))
	assert.InDelta(t, 2.5, earned, 1e-12)

	earned = r.Record(instruction.Instruction{ID: 2, Reward: 8, Beta: 0.5}, epoch.Add(3*time.Second))
	assert.InDelta(t, 1.0, earned, 1e-12)

	assert.InDelta(t, 3.5, r.Accumulated(), 1e-12)
	assert.Equal(t, []instruction.ID{1, 2}, r.Sequence())
	assert.Equal(t, 2, r.Count())

	trace := r.Trace()
	require.Len(t, trace, 2)
	assert.InDelta(t, 2.0, trace[0].Steps, 1e-12)
	assert.InDelta(t, 2.5, trace[0].Accumulated, 1e-12)
	assert.InDelta(t, 3.5, trace[1].Accumulated, 1e-12)
}

func TestRecorder_FractionalSteps(t *testing.T) {
	epoch := time.Now()
	r := NewRecorder(epoch, 200*time.Millisecond)

	earned := r.Record(instruction.Instruction{ID: 1, Reward: 1, Beta: 0.9}, epoch.Add(300*time.Millisecond))
	assert.InDelta(t, math.Pow(0.9, 1.5), earned, 1e-12)
}

func TestRecorder_BeforeEpochIsUndiscounted(t *testing.T) {
	epoch := time.Now()
	r := NewRecorder(epoch, time.Second)

	earned := r.Record(instruction.Instruction{ID: 1, Reward: 4, Beta: 0.9}, epoch.Add(-time.Second))
	assert.Equal(t, 4.0, earned)
}

func TestRecorder_NonPositiveStepDefaults(t *testing.T) {
	epoch := time.Now()
	r := NewRecorder(epoch, 0)

	earned := r.Record(instruction.Instruction{ID: 1, Reward: 1, Beta: 0.5}, epoch.Add(time.Second))
	assert.InDelta(t, 0.5, earned, 1e-12)
}

func TestRecorder_CopiesAreIndependent(t *testing.T) {
	r := NewRecorder(time.Now(), time.Second)
	r.Record(instruction.Instruction{ID: 7, Reward: 1, Beta: 0.5}, time.Now())

	seq := r.Sequence()
	seq[0] = 99
	assert.Equal(t, []instruction.ID{7}, r.Sequence())
}

func TestRecorder_Concurrent(t *testing.T) {
	epoch := time.Now()
	r := NewRecorder(epoch, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r.Record(instruction.Instruction{ID: instruction.ID(id), Reward: 1, Beta: 0.5}, epoch)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, r.Count())
	assert.InDelta(t, 50.0, r.Accumulated(), 1e-9)
}
