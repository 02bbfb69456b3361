package telemetry_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vestige-research/eeg-alpha/internal/adapters/telemetry"
)

type collector struct {
	mu     sync.Mutex
	chunks []string
}

func (c *collector) add(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = append(c.chunks, string(data))
}

func (c *collector) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.chunks...)
}

func TestBatchProcessor_FlushOnSize(t *testing.T) {
	var c collector
	bp := telemetry.NewBatchProcessor(5, time.Hour, c.add)
	defer func() { _ = bp.Close() }()

	_, err := bp.Write([]byte("123"))
	require.NoError(t, err)
	assert.Empty(t, c.get())

	_, err = bp.Write([]byte("456"))
	require.NoError(t, err)
	assert.Equal(t, []string{"123456"}, c.get())
}

func TestBatchProcessor_FlushOnTime(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		bp := telemetry.NewBatchProcessor(0, 0, c.add)
		defer func() { _ = bp.Close() }()

		_, err := bp.Write([]byte("Collecting ruff\n"))
		require.NoError(t, err)

		time.Sleep(telemetry.DefaultTimeLimit / 2)
		synctest.Wait()
		assert.Empty(t, c.get())

		time.Sleep(telemetry.DefaultTimeLimit)
		synctest.Wait()
		assert.Equal(t, []string{"Collecting ruff\n"}, c.get())
	})
}

func TestBatchProcessor_CloseFlushes(t *testing.T) {
	var c collector
	bp := telemetry.NewBatchProcessor(0, time.Hour, c.add)

	_, err := bp.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, bp.Close())
	assert.Equal(t, []string{"partial"}, c.get())

	_, err = bp.Write([]byte("late"))
	require.Error(t, err)
	require.NoError(t, bp.Close())
}
