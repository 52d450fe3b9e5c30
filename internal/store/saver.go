package store

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const DefaultSaveDelay = 750 * time.Millisecond

// SaveStatus reports the outcome of one debounced save.
type SaveStatus struct {
	Err error
	At  time.Time
}

// Saver coalesces save requests and writes them off the caller's goroutine.
// A burst of edits produces a single disk write after the quiet period.
type Saver struct {
	store Store
	delay time.Duration
	log   zerolog.Logger

	mu      sync.Mutex
	pending *Document
	timer   *time.Timer
	closed  bool

	status chan SaveStatus
}

func NewSaver(s Store, delay time.Duration, log zerolog.Logger) *Saver {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	return &Saver{
		store:  s,
		delay:  delay,
		log:    log,
		status: make(chan SaveStatus, 8),
	}
}

// Request schedules doc for saving. Requests within the quiet period replace
// the pending document and restart the timer.
func (s *Saver) Request(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = &doc
	if s.timer != nil {
		s.timer.Reset(s.delay)
		return
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

func (s *Saver) fire() {
	s.mu.Lock()
	doc := s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()
	if doc == nil {
		return
	}
	s.save(*doc)
}

func (s *Saver) save(doc Document) {
	err := s.store.Save(doc)
	if err != nil {
		s.log.Error().Err(err).Msg("scene save failed")
	} else {
		s.log.Debug().Int("charges", len(doc.Charges)).Msg("scene saved")
	}
	select {
	case s.status <- SaveStatus{Err: err, At: time.Now()}:
	default: // nobody is draining, drop rather than block the writer
	}
}

// Status delivers one entry per completed save attempt.
func (s *Saver) Status() <-chan SaveStatus { return s.status }

// Flush writes any pending document synchronously, for shutdown.
func (s *Saver) Flush() error {
	s.mu.Lock()
	doc := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	if doc == nil {
		return nil
	}
	err := s.store.Save(*doc)
	if err != nil {
		s.log.Error().Err(err).Msg("scene flush failed")
	}
	return err
}

// Close stops the saver after flushing pending work.
func (s *Saver) Close() error {
	err := s.Flush()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return err
}
