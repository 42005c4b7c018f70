package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	queueSize        = 300
	staleBatchSize   = 50
	taskTimeout      = 5 * time.Minute
	maxRetryDelay    = 30 * time.Second
	defaultInterval  = 300 * time.Second
	defaultWorkerCnt = 2
)

type Config struct {
	// Interval between scheduling passes.
	Interval time.Duration
	// RefreshAge is how old a stored profile gets before it is re-scraped.
	// Zero disables background refresh.
	RefreshAge  time.Duration
	WorkerCount int
}

type Scheduler struct {
	lister      StaleLister
	refresher   Refresher
	loader      CatalogLoader
	interval    time.Duration
	refreshAge  time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewScheduler(lister StaleLister, refresher Refresher, loader CatalogLoader, config Config) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())

	if config.Interval <= 0 {
		config.Interval = defaultInterval
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = defaultWorkerCnt
	}

	return &Scheduler{
		lister:      lister,
		refresher:   refresher,
		loader:      loader,
		interval:    config.Interval,
		refreshAge:  config.RefreshAge,
		workerCount: config.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, queueSize),
		pending:     make(map[string]struct{}),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

// Stop cancels running tasks and waits for the workers. The queue stays open
// so late retries fail on the cancelled context instead of a closed channel.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueTasks() {
	if s.loader != nil {
		if err := s.EnqueueTask(NewReloadCompetitorsTask(s.loader)); err != nil {
			slog.Warn("Failed to enqueue ReloadCompetitorsTask", "error", err)
		}
	}

	if s.refreshAge <= 0 || s.lister == nil {
		return
	}

	cutoff := time.Now().Add(-s.refreshAge)
	brands, err := s.lister.ListStale(s.ctx, cutoff, staleBatchSize)
	if err != nil {
		slog.Warn("Failed to list stale brands", "error", err)
		return
	}
	if len(brands) == 0 {
		slog.Debug("No stale brands found", "cutoff", cutoff)
		return
	}

	slog.Debug("Scheduling brand refreshes", "count", len(brands))

	for _, b := range brands {
		if !s.markPending(b.Website) {
			slog.Debug("Brand refresh already pending", "origin", b.Website)
			continue
		}
		if err := s.EnqueueTask(NewRefreshBrandTask(b.Website, s.refresher)); err != nil {
			s.clearPending(b.Website)
			slog.Warn("Failed to enqueue RefreshBrandTask", "origin", b.Website, "error", err)
		}
	}
}

func (s *Scheduler) markPending(origin string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[origin]; ok {
		return false
	}
	s.pending[origin] = struct{}{}
	return true
}

func (s *Scheduler) clearPending(origin string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, origin)
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		s.clearPending(task.GetOrigin())
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() || s.ctx.Err() != nil {
		s.clearPending(task.GetOrigin())
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	delay := retryDelay(task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "origin", task.GetOrigin(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", delay.String())

	go func() {
		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			return
		}
		if retryErr := s.EnqueueTask(task); retryErr != nil {
			s.clearPending(task.GetOrigin())
			slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
		}
	}()
}

// retryDelay doubles from one second and caps at maxRetryDelay.
func retryDelay(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	if retryCount > 6 {
		return maxRetryDelay
	}
	d := time.Duration(1<<uint(retryCount-1)) * time.Second
	if d > maxRetryDelay {
		d = maxRetryDelay
	}
	return d
}
