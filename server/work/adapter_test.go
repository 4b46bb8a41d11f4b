package work

import (
	"sync"
	"testing"
	"time"

	"github.com/Daskott/tapcard/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	out []string
}

func (b *syncBuffer) write(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out = append(b.out, s)
}

func (b *syncBuffer) lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.out...)
}

func TestPerform(t *testing.T) {
	models.InitializeTestDb()

	workerPool, err := NewWorkerAdapter("UTC")
	require.Nil(t, err)

	buffer := &syncBuffer{}
	err = workerPool.Register("write_to_buffer", func(args map[string]interface{}) error {
		buffer.write(args["text"].(string))
		return nil
	})
	require.Nil(t, err)

	err = workerPool.Register("write_to_buffer", func(map[string]interface{}) error { return nil })
	assert.ErrorIs(t, err, ErrDuplicateHandler)

	err = workerPool.Perform(JobParams{
		Name:    "share card",
		Handler: "write_to_buffer",
		Args:    map[string]interface{}{"text": "Hello"},
	})
	require.Nil(t, err)

	workerPool.Start()
	time.Sleep(2 * time.Second)
	workerPool.Stop()

	assert.Equal(t, []string{"Hello"}, buffer.lines(), "Expected job to write to buffer")

	stats, err := models.CurrentJobsStats()
	require.Nil(t, err)
	assert.Equal(t, int64(1), stats.SuccessfulJobCount)
}

func TestPerformIn(t *testing.T) {
	models.InitializeTestDb()

	workerPool, err := NewWorkerAdapter("UTC")
	require.Nil(t, err)

	buffer := &syncBuffer{}
	workerPool.Register("write_to_buffer", func(map[string]interface{}) error {
		buffer.write("Hello")
		return nil
	})

	err = workerPool.PerformIn(2, JobParams{
		Name:    "write_to_buffer",
		Handler: "write_to_buffer",
		Args:    map[string]interface{}{},
	})
	assert.Nil(t, err)

	workerPool.Start()
	defer workerPool.Stop()

	time.Sleep(time.Second)
	assert.Empty(t, buffer.lines(), "The job should still be scheduled")

	// Wait until the job is due & processed
	time.Sleep(8 * time.Second)
	assert.Equal(t, []string{"Hello"}, buffer.lines(), "Expected job to write to buffer")
}

func TestFailingJobIsRetried(t *testing.T) {
	models.InitializeTestDb()

	workerPool, err := NewWorkerAdapter("UTC")
	require.Nil(t, err)

	workerPool.Register("explode", func(map[string]interface{}) error {
		panic("boom")
	})

	require.Nil(t, workerPool.Perform(JobParams{Name: "explode", Handler: "explode"}))
	require.Nil(t, workerPool.Perform(JobParams{Name: "orphan", Handler: "missing"}))

	workerPool.Start()
	time.Sleep(2 * time.Second)
	workerPool.Stop()

	jobs, _, err := models.FetchJobsByStatus(models.SCHEDULED_JOB, 1)
	require.Nil(t, err)
	require.Len(t, jobs, 2, "Failed jobs should be scheduled for a retry")

	for _, job := range jobs {
		assert.Equal(t, 1, job.Fails)
		assert.NotEmpty(t, job.LastError)
		assert.True(t, job.EnqueueAt.After(time.Now()), "Retry should be in the future")
	}
}
