package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a named unit of scheduled work.
type Job func(context.Context) error

// Service runs registered jobs on cron schedules.
type Service struct {
	cron      *cron.Cron
	logger    *log.Logger
	location  *time.Location
	mu        sync.Mutex
	entries   map[string]cron.EntryID
	rootCtx   context.Context
	startOnce sync.Once
	stopOnce  sync.Once
}

type options struct {
	Logger   *log.Logger
	Location *time.Location
	Cron     *cron.Cron
}

// Option applies configuration to the scheduler service.
type Option func(*options)

// WithLogger injects a custom logger implementation.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.Logger = l }
}

// WithLocation sets the scheduler timezone location.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.Location = loc }
}

// WithCron supplies a preconfigured cron instance.
func WithCron(c *cron.Cron) Option {
	return func(o *options) { o.Cron = c }
}

// NewService creates an idle scheduler. Jobs run only after Start.
func NewService(opts ...Option) *Service {
	o := options{Logger: log.Default(), Location: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}
	engine := o.Cron
	if engine == nil {
		engine = cron.New(cron.WithLocation(o.Location))
	}
	return &Service{
		cron:     engine,
		logger:   o.Logger,
		location: o.Location,
		entries:  make(map[string]cron.EntryID),
		rootCtx:  context.Background(),
	}
}

// Register schedules a job under a unique name. Job panics and errors are
// contained and logged; one failing run never stops the schedule.
func (s *Service) Register(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	id, err := s.cron.AddFunc(spec, func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Printf("scheduler: job %q panicked: %v", name, r)
			}
		}()
		started := time.Now()
		if err := job(s.rootCtx); err != nil {
			s.logger.Printf("scheduler: job %q failed after %s: %v", name, time.Since(started).Round(time.Millisecond), err)
			return
		}
		s.logger.Printf("scheduler: job %q completed in %s", name, time.Since(started).Round(time.Millisecond))
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %q with spec %q: %w", name, spec, err)
	}
	s.entries[name] = id
	return nil
}

// Start begins running schedules. Safe to call more than once.
func (s *Service) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.rootCtx = ctx
		s.cron.Start()
		s.logger.Printf("scheduler: started with %d job(s)", len(s.entries))
	})
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		s.logger.Printf("scheduler: stopped")
	})
}

// JobNames returns the registered job names.
func (s *Service) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}
