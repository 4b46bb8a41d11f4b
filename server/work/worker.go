package work

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Daskott/tapcard/colors"
	"github.com/Daskott/tapcard/server/logger"
	"github.com/Daskott/tapcard/server/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MAX_FAILS = 4

	// RETRY_DELAY is multiplied by the number of fails to get the delay
	// before a failed job is retried.
	RETRY_DELAY = 30 * time.Second
)

var (
	DefaultTickerDuration = 5 * time.Millisecond
	TickerDurationOnError = 10 * time.Millisecond

	ErrDuplicateHandler = errors.New("handler with provided name already mapped")
	ErrUnknownHandler   = errors.New("no handler registered for job")

	logg = logger.NewLogger()
)

type JobParams struct {
	Name    string
	Handler string
	Unique  bool
	Args    map[string]interface{}
}

type Handler func(map[string]interface{}) error

type worker struct {
	id                     string
	handlers               map[string]Handler
	stopChan               chan struct{}
	sleepBackoffsInSeconds []int64
}

func newWorker(sleepBackoffsInSeconds []int64) *worker {
	return &worker{
		id:                     uuid.NewString()[:8],
		handlers:               make(map[string]Handler),
		stopChan:               make(chan struct{}),
		sleepBackoffsInSeconds: sleepBackoffsInSeconds,
	}
}

// registerHandler binds a name to a job handler.
func (w *worker) registerHandler(name string, handler Handler) error {
	if _, ok := w.handlers[name]; ok {
		return ErrDuplicateHandler
	}

	w.handlers[name] = handler

	return nil
}

// start starts the worker loop that pulls jobs from the queue & process them
func (w *worker) start() {
	go w.loop()
}

func (w *worker) stop() {
	w.stopChan <- struct{}{}
}

func (w *worker) loop() {
	var consecutiveNoJobs int
	var currentJob *models.Job
	var err error

	sleepBackoffs := w.sleepBackoffsInSeconds
	rateLimiter := time.NewTicker(DefaultTickerDuration)
	defer rateLimiter.Stop()

	logg.Infof("Starting worker %s", w.id)
	for {
		select {
		case <-w.stopChan:
			logg.Infof("Stopping worker %s", w.id)
			return
		case <-rateLimiter.C:
			currentJob, err = models.NextEnqueuedJob()
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// If no job found, slowly increase the wait time between each job fetch
					// using 'sleepBackoffsInSeconds'. To reduce db hit when it's not necessary.
					consecutiveNoJobs++
					idx := consecutiveNoJobs
					if idx >= len(sleepBackoffs) {
						idx = len(sleepBackoffs) - 1
					}
					rateLimiter.Reset(time.Duration(sleepBackoffs[idx])*time.Second + DefaultTickerDuration)
					continue
				}

				w.logError(err)
				rateLimiter.Reset(TickerDurationOnError)
				continue
			}

			claimed, err := currentJob.MarkAsClaimed()
			if err != nil {
				w.logError(err)
				rateLimiter.Reset(TickerDurationOnError)
				continue
			}

			w.logInfof("fetched job with id=%v, status_id=%v, claimed=%v",
				currentJob.ID, currentJob.JobStatusID, claimed)

			if !claimed {
				continue
			}

			w.processJob(currentJob)
			rateLimiter.Reset(DefaultTickerDuration)
			consecutiveNoJobs = 0
		}
	}
}

func (w *worker) processJob(job *models.Job) {
	args := make(map[string]interface{})
	err := json.Unmarshal([]byte(job.Args), &args)
	if err != nil {
		w.logError(err)
		w.determineFailedJobFate(job, err)
		return
	}

	err = w.run(job, args)
	if err != nil {
		w.logError(err)
		w.determineFailedJobFate(job, err)
		return
	}

	w.markJobAsSuccessful(job)
}

func (w *worker) run(job *models.Job, args map[string]interface{}) (err error) {
	handler, ok := w.handlers[job.Handler]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownHandler, job.Handler)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %v panicked: %v", job.ID, r)
		}
	}()

	return handler(args)
}

// determineFailedJobFate marks a job with MAX_FAILS fails as dead, any other
// failed job is scheduled to be retried with a linear backoff.
func (w *worker) determineFailedJobFate(job *models.Job, runError error) {
	job.Fails++

	update := map[string]interface{}{
		"claimed":    false,
		"fails":      job.Fails,
		"last_error": runError.Error(),
	}

	statusName := models.DEAD_JOB
	if job.Fails < MAX_FAILS {
		statusName = models.SCHEDULED_JOB
		update["enqueue_at"] = time.Now().UTC().Add(time.Duration(job.Fails) * RETRY_DELAY)
	}

	jobStatus, err := models.FindJobStatus(statusName)
	if err != nil {
		w.logError(err)
		return
	}
	update["job_status_id"] = jobStatus.ID

	err = job.Update(update)
	if err != nil {
		w.logError(err)
	}
	w.logInfof("job with id=%v failed, status=%v", job.ID, jobStatus.Name)
}

func (w *worker) markJobAsSuccessful(job *models.Job) {
	jobStatus, err := models.FindJobStatus(models.SUCCESSFUL_JOB)
	if err != nil {
		w.logError(err)
		return
	}

	err = job.Update(map[string]interface{}{
		"claimed":       false,
		"job_status_id": jobStatus.ID,
	})
	if err != nil {
		w.logError(err)
	}
	w.logInfof("job with id=%v completed with status=%v", job.ID, jobStatus.Name)
}

func (w *worker) logInfof(template string, args ...interface{}) {
	prefix := colors.Yellow(fmt.Sprintf("[worker %v] ", w.id))
	logg.Infof(prefix+template, args...)
}

func (w *worker) logError(err error) {
	prefix := colors.Red(fmt.Sprintf("[worker %v] ", w.id))
	logg.Errorf("%s%v", prefix, err)
}
