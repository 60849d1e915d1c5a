package main

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RetentionWindow is the maximum age of a snapshot that is still applied on load.
const RetentionWindow = 6 * 30 * 24 * time.Hour

const defaultSaveTimeout = 5 * time.Second

type StoreState int

const (
	StateUninitialized StoreState = iota
	StateLoading
	StateReady
	StateClosed
)

func (s StoreState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type StoreOption func(*Store)

// WithClock replaces time.Now for timestamps, retention checks and ids.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithIDFunc replaces the generator of imported subject ids.
func WithIDFunc(newID func() string) StoreOption {
	return func(s *Store) { s.newImportID = newID }
}

func WithSaveTimeout(d time.Duration) StoreOption {
	return func(s *Store) { s.saveTimeout = d }
}

// Store owns the subjects and exams of a session.
//
// Mutations apply in memory and then queue a save. A single worker drains the
// queue and always serializes the state as it is when the save runs, so a
// later mutation can never be overwritten by an earlier one.
type Store struct {
	persistence SnapshotStore
	logger      *slog.Logger
	now         func() time.Time
	saveTimeout time.Duration
	newImportID func() string

	mu       sync.Mutex
	state    StoreState
	subjects []Subject
	exams    []Exam
	pending  []Candidate
	lastID   int64

	saveCh chan struct{}
	done   chan struct{}
}

func NewStore(persistence SnapshotStore, logger *slog.Logger, opts ...StoreOption) *Store {
	s := &Store{
		persistence: persistence,
		logger:      logger,
		now:         time.Now,
		saveTimeout: defaultSaveTimeout,
		newImportID: uuid.NewString,
		subjects:    []Subject{},
		exams:       []Exam{},
		saveCh:      make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.runSaves()

	return s
}

func (s *Store) State() StoreState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load adopts the persisted snapshot if it is younger than RetentionWindow.
// Any failure leaves the store empty. Only the first call has an effect.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return
	}
	s.state = StateLoading
	s.mu.Unlock()

	snapshot, err := s.persistence.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateLoading {
		s.state = StateReady
	}

	switch {
	case err != nil:
		s.logger.Error("failed to load schedule, starting empty", "error", err)
	case snapshot == nil:
		s.logger.Debug("no saved schedule found")
	case s.now().Sub(snapshot.Time()) >= RetentionWindow:
		s.logger.Info("discarding expired schedule", "saved_at", snapshot.Time())
	default:
		s.subjects = append([]Subject{}, snapshot.Subjects...)
		s.exams = append([]Exam{}, snapshot.Exams...)
		s.logger.Debug("loaded schedule", "subjects", len(s.subjects), "exams", len(s.exams))
	}
}

// Close waits for queued saves to finish and stops the save worker.
func (s *Store) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	close(s.saveCh)
	s.mu.Unlock()

	<-s.done
}

func (s *Store) Subjects() []Subject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Subject{}, s.subjects...)
}

func (s *Store) Exams() []Exam {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Exam{}, s.exams...)
}

// Snapshot returns the current state stamped with the current time.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Subjects:  append([]Subject{}, s.subjects...),
		Exams:     append([]Exam{}, s.exams...),
		Timestamp: s.now().UnixMilli(),
	}
}

// +---------------------+
// |                     |
// |      Mutations      |
// |                     |
// +---------------------+

func (s *Store) AddSubject(subject Subject) (Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return Subject{}, ErrNotReady
	}

	subject.ID = s.nextIDLocked()
	subject.Days = append([]Weekday{}, subject.Days...)
	s.subjects = append(s.subjects, subject)
	s.requestSaveLocked()

	return subject, nil
}

// RemoveSubject reports whether a subject with id existed.
func (s *Store) RemoveSubject(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return false, ErrNotReady
	}

	for i, subject := range s.subjects {
		if subject.ID == id {
			s.subjects = append(s.subjects[:i:i], s.subjects[i+1:]...)
			s.requestSaveLocked()
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) AddExam(exam Exam) (Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return Exam{}, ErrNotReady
	}

	exam.ID = s.nextIDLocked()
	s.exams = append(s.exams, exam)
	s.requestSaveLocked()

	return exam, nil
}

func (s *Store) RemoveExam(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return false, ErrNotReady
	}

	for i, exam := range s.exams {
		if exam.ID == id {
			s.exams = append(s.exams[:i:i], s.exams[i+1:]...)
			s.requestSaveLocked()
			return true, nil
		}
	}
	return false, nil
}

// Import buffers candidates and, when the buffer goes from empty to
// non-empty, reconciles and merges them in one step followed by one save.
// It returns the subjects that were added.
func (s *Store) Import(candidates []Candidate) ([]Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return nil, ErrNotReady
	}

	wasEmpty := len(s.pending) == 0
	s.pending = append(s.pending, candidates...)
	if !wasEmpty || len(s.pending) == 0 {
		return nil, nil
	}

	before := len(s.subjects)
	s.subjects = reconcile(s.pending, s.subjects, s.newImportID)
	s.pending = nil
	s.requestSaveLocked()

	return append([]Subject{}, s.subjects[before:]...), nil
}

// nextIDLocked derives an id from the clock, bumped so ids issued by this
// store are strictly increasing.
func (s *Store) nextIDLocked() string {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

// +---------------------+
// |                     |
// |     Save Queue      |
// |                     |
// +---------------------+

func (s *Store) requestSaveLocked() {
	select {
	case s.saveCh <- struct{}{}:
	default:
		// a save is already queued and will pick up this mutation
	}
}

func (s *Store) runSaves() {
	defer close(s.done)

	for range s.saveCh {
		snapshot := s.Snapshot()

		ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
		err := s.persistence.Save(ctx, snapshot)
		cancel()

		if err != nil {
			s.logger.Error("failed to save schedule", "error", err)
			continue
		}
		s.logger.Debug("saved schedule", "subjects", len(snapshot.Subjects), "exams", len(snapshot.Exams))
	}
}
