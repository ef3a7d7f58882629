package dotthu

import (
	"log"
	"sync"
	"time"
)

// Scheduler drives AutoClose from a background ticker. Manual close/reopen
// can run concurrently; the manager's CAS write resolves the race.
type Scheduler struct {
	Manager  *Manager
	Interval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewScheduler(m *Manager) *Scheduler {
	return &Scheduler{
		Manager:  m,
		Interval: 1 * time.Hour,
		stop:     make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticker = time.NewTicker(s.Interval)
	s.wg.Add(1)
	go s.run()
	log.Printf("[scheduler] auto-close running every %v", s.Interval)
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		log.Println("[scheduler] stopped")
	}
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	s.tick()
	for {
		select {
		case <-s.ticker.C:
			s.tick()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) tick() {
	processed, err := s.Manager.AutoClose(time.Now())
	if err != nil {
		log.Printf("[scheduler] auto-close failed: %v", err)
		return
	}
	if processed > 0 {
		log.Printf("[scheduler] auto-close processed %d periods", processed)
	}
}
