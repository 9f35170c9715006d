package scheduler

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"
)

// CheckFunc is one run of a periodic job.
type CheckFunc func(ctx context.Context) error

// Result is the outcome of the latest run of a job.
type Result struct {
	Status       string        `json:"status"`
	Message      string        `json:"message,omitempty"`
	ResponseTime time.Duration `json:"-"`
	ResponseMS   int64         `json:"response_time_ms"`
	CheckedAt    time.Time     `json:"checked_at"`
}

func (r Result) OK() bool {
	return r.Status == "success"
}

type Scheduler struct {
	jobs    map[string]*Job // job name -> job
	results map[string]Result
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
}

type Job struct {
	name     string
	interval time.Duration
	check    CheckFunc
	ticker   *time.Ticker
	cancel   context.CancelFunc
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:    make(map[string]*Job),
		results: make(map[string]Result),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Stop shuts down every job. Recorded results are kept.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		job.ticker.Stop()
		job.cancel()
	}

	s.jobs = make(map[string]*Job)
	log.Println("Scheduler stopped")
}

// AddJob runs check right away and then every interval, replacing any job
// with the same name.
func (s *Scheduler) AddJob(name string, interval time.Duration, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, exists := s.jobs[name]; exists {
		existing.ticker.Stop()
		existing.cancel()
	}

	jobCtx, jobCancel := context.WithCancel(s.ctx)

	job := &Job{
		name:     name,
		interval: interval,
		check:    check,
		ticker:   time.NewTicker(interval),
		cancel:   jobCancel,
	}

	s.jobs[name] = job

	go func() {
		s.execute(jobCtx, job)
		s.run(jobCtx, job)
	}()

	log.Printf("Added job %s every %v", name, interval)
}

func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, exists := s.jobs[name]; exists {
		job.ticker.Stop()
		job.cancel()
		delete(s.jobs, name)
		delete(s.results, name)
		log.Printf("Removed job %s", name)
	}
}

func (s *Scheduler) run(ctx context.Context, job *Job) {
	defer job.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-job.ticker.C:
			s.execute(ctx, job)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job *Job) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	err := job.check(ctx)
	elapsed := time.Since(start)

	result := Result{
		Status:       "success",
		ResponseTime: elapsed,
		ResponseMS:   elapsed.Milliseconds(),
		CheckedAt:    time.Now(),
	}

	if err != nil {
		result.Status = "failure"
		result.Message = err.Error()
		log.Printf("Job %s failed: %v", job.name, err)
	}

	s.mu.Lock()
	if current, exists := s.jobs[job.name]; exists && current == job {
		s.results[job.name] = result
	}
	s.mu.Unlock()
}

// Results returns a copy of the latest result of every job.
func (s *Scheduler) Results() map[string]Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make(map[string]Result, len(s.results))
	for name, result := range s.results {
		results[name] = result
	}
	return results
}

func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Global scheduler instance
var globalScheduler *Scheduler
var globalMu sync.RWMutex

// Initialize replaces the global scheduler with a fresh one.
func Initialize() *Scheduler {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalScheduler != nil {
		globalScheduler.Stop()
	}
	globalScheduler = NewScheduler()
	return globalScheduler
}

func Shutdown() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalScheduler != nil {
		globalScheduler.Stop()
		globalScheduler = nil
	}
}

// Results reads the global scheduler; it is empty when none is running.
func Results() map[string]Result {
	globalMu.RLock()
	defer globalMu.RUnlock()

	if globalScheduler == nil {
		return map[string]Result{}
	}
	return globalScheduler.Results()
}
