package reminders

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"repackwatch/config"
	"repackwatch/models"
	"repackwatch/services/notify"
	"repackwatch/services/watchlist"
)

// Service runs the recurring reminder check: find due items, emit one
// aggregate notification, push every due item's reminder date forward.
type Service struct {
	watchlist *watchlist.Service
	notifier  notify.Notifier
	schedule  config.ReminderSchedule

	mu      sync.RWMutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewService creates the reminder scheduler. It stays idle until Start.
func NewService(watchlistService *watchlist.Service, notifier notify.Notifier, schedule config.ReminderSchedule) *Service {
	return &Service{
		watchlist: watchlistService,
		notifier:  notifier,
		schedule:  schedule,
	}
}

// Start arms the recurring check. Calling Start on an armed scheduler is a
// no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	s.wg.Add(1)
	go s.loop()

	log.Println("[reminders] scheduler started")
	return nil
}

// Stop tears the scheduler down, waiting for an in-flight check until the
// given context expires.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[reminders] scheduler stopped")
	case <-ctx.Done():
		log.Println("[reminders] scheduler stopped (timeout)")
	}

	s.running = false
	return nil
}

// Running reports whether the scheduler is armed.
func (s *Service) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Service) loop() {
	defer s.wg.Done()

	initialDelay := time.Duration(s.schedule.InitialDelaySeconds) * time.Second
	if initialDelay > 0 {
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(initialDelay):
		}
	}

	s.runCheck()

	interval := time.Duration(s.schedule.CheckIntervalSeconds) * time.Second
	if interval < time.Second {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if jitter := s.jitter(); jitter > 0 {
				select {
				case <-s.ctx.Done():
					return
				case <-time.After(jitter):
				}
			}
			s.runCheck()
		}
	}
}

func (s *Service) jitter() time.Duration {
	if s.schedule.JitterSeconds <= 0 {
		return 0
	}
	return time.Duration(rand.Intn(s.schedule.JitterSeconds)) * time.Second
}

func (s *Service) runCheck() {
	runID := uuid.NewString()
	due, err := s.CheckNow(s.ctx)
	if err != nil {
		log.Printf("[reminders] check %s failed: %v", runID, err)
		return
	}
	log.Printf("[reminders] check %s complete: %d item(s) due", runID, len(due))
}

// CheckNow performs one reminder tick against the current wall clock and
// returns the items that were due. Notification delivery is fire-and-forget:
// a send failure is logged and the reminder dates advance regardless.
func (s *Service) CheckNow(ctx context.Context) ([]models.WatchlistItem, error) {
	now := time.Now().UTC()

	due, err := s.watchlist.CheckDue(ctx, now)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return due, nil
	}

	settings, err := s.watchlist.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if settings.EnableNotifications {
		if err := s.notifier.Send(ctx, notify.ReminderNotification(len(due))); err != nil {
			log.Printf("[reminders] notification failed: %v", err)
		}
	}

	if err := s.watchlist.AdvanceReminders(ctx, due, now); err != nil {
		return nil, err
	}
	return due, nil
}
