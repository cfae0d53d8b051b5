package tasks

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingTask struct {
	Task
}

func (t *failingTask) Execute(context.Context) error {
	return errors.New("boom")
}

func newTestScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		interval:  time.Hour,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, 10),
	}
}

func TestScheduler_ShutdownDuringRetryDoesNotPanic(t *testing.T) {
	s := newTestScheduler()

	task := &failingTask{Task: NewTask(TaskTypeSweepCache, "")}
	s.executeTask(0, task)

	if task.GetRetryCount() != 1 {
		t.Fatalf("Expected one retry scheduled, got %d", task.GetRetryCount())
	}

	// Stop waits for the pending retry goroutine before closing the
	// queue; a send on the closed channel would panic here.
	s.Stop()
}

func TestScheduler_EnqueueAfterStopReturnsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		interval: time.Hour,
		ctx:      ctx,
		cancel:   cancel,
		// Unbuffered and no workers, so the send can never be chosen.
		taskQueue: make(chan TaskInterface),
	}
	s.cancel()

	task := &failingTask{Task: NewTask(TaskTypeSweepCache, "")}
	if err := s.EnqueueTask(task); err == nil {
		t.Error("Expected enqueue on a stopped scheduler to fail")
	}
}

func TestScheduler_ExhaustedRetriesStop(t *testing.T) {
	s := newTestScheduler()

	task := &failingTask{Task: NewTask(TaskTypeSweepCache, "")}
	task.RetryCount = task.MaxRetries

	s.executeTask(0, task)
	s.Stop()

	if task.GetRetryCount() != task.GetMaxRetries() {
		t.Errorf("Expected retry count to stay at max, got %d", task.GetRetryCount())
	}
	if len(s.taskQueue) != 0 {
		t.Errorf("Expected no re-enqueue after retries exhausted, queue has %d", len(s.taskQueue))
	}
}
