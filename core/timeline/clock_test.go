package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_StartsStopped(t *testing.T) {
	c := NewClock()
	assert.Equal(t, 0.0, c.Current())
	assert.False(t, c.Running())
}

func TestClock_AdvanceOnlyWhenRunning(t *testing.T) {
	c := NewClock()
	c.SetTotal(10)

	c.Advance(0.5)
	assert.Equal(t, 0.0, c.Current(), "paused clock must not advance")

	c.Play()
	c.Advance(0.5)
	assert.Equal(t, 0.5, c.Current())

	c.Pause()
	c.Advance(0.5)
	assert.Equal(t, 0.5, c.Current())
}

func TestClock_MonotonicStopAtEnd(t *testing.T) {
	c := NewClock()
	c.SetTotal(1.0)
	c.Play()

	for i := 0; i < 100; i++ {
		c.Advance(0.033)
		assert.LessOrEqual(t, c.Current(), 1.0, "current must never pass totalDuration")
	}

	assert.Equal(t, 1.0, c.Current())
	assert.False(t, c.Running(), "reaching the end forces running=false")

	// 到达终点后再 tick 也不会动
	c.Advance(0.033)
	assert.Equal(t, 1.0, c.Current())
}

func TestClock_SeekClampsAtZero(t *testing.T) {
	c := NewClock()
	c.SetTotal(10)

	c.Seek(-5)
	assert.Equal(t, 0.0, c.Current())

	c.Seek(3.25)
	assert.Equal(t, 3.25, c.Current())
}

func TestClock_SeekDoesNotChangeRunState(t *testing.T) {
	c := NewClock()
	c.SetTotal(10)
	c.Play()

	c.Seek(5)
	assert.True(t, c.Running(), "seek keeps the clock running")

	c.Pause()
	c.Seek(2)
	assert.False(t, c.Running())
}

func TestClock_SeekMayExceedTotalMomentarily(t *testing.T) {
	// scrub 允许瞬时越过软上限，下一次播放 tick 再 clamp
	c := NewClock()
	c.SetTotal(10)

	c.Seek(12)
	assert.Equal(t, 12.0, c.Current())

	c.Play()
	c.Advance(0.016)
	assert.Equal(t, 10.0, c.Current())
	assert.False(t, c.Running())
}
