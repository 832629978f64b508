package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/taskpad/internal/models"
	"github.com/yukikurage/taskpad/internal/repository"
)

// SessionService tracks the single authenticated account of this instance and
// swaps the task store contents when it changes.
type SessionService struct {
	repo      repository.SessionRepository
	store     *TaskStore
	persister *SnapshotPersister
	log       *zap.SugaredLogger

	mu      sync.RWMutex
	current *models.Account
}

// NewSessionService creates a new SessionService
func NewSessionService(repo repository.SessionRepository, store *TaskStore, persister *SnapshotPersister, log *zap.SugaredLogger) *SessionService {
	return &SessionService{
		repo:      repo,
		store:     store,
		persister: persister,
		log:       log,
	}
}

// Establish makes account the active session. Pending writes of the previous
// account are flushed first, then the account's snapshot is loaded before
// Establish returns.
func (s *SessionService) Establish(ctx context.Context, account models.Account) {
	account = account.Public()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.persister.Flush(ctx)
	s.persister.Bind("")

	s.savePointer(ctx, account)

	snapshot := s.persister.Load(ctx, account.ID)
	s.store.LoadSnapshot(account.ID, snapshot)
	s.persister.Bind(account.ID)

	s.current = &account
	s.log.Infow("session established", "account_id", account.ID, "username", account.Username)
}

// Clear ends the active session. The account's durable snapshot is kept so a
// later login recovers its tasks.
func (s *SessionService) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.persister.Flush(ctx)
	s.persister.Bind("")
	s.store.Reset()

	if err := s.repo.Clear(ctx); err != nil {
		s.log.Errorw("failed to clear session pointer", "error", err)
	}
	if s.current != nil {
		s.log.Infow("session cleared", "account_id", s.current.ID)
	}
	s.current = nil
}

// Refresh replaces the stored profile of the active account without reloading
// its tasks. Accounts other than the active one are ignored.
func (s *SessionService) Refresh(ctx context.Context, account models.Account) {
	account = account.Public()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.ID != account.ID {
		return
	}
	s.savePointer(ctx, account)
	s.current = &account
}

// Current returns the active account, or nil.
func (s *SessionService) Current() *models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	account := *s.current
	return &account
}

// Restore re-establishes the session persisted by a previous run, if any.
func (s *SessionService) Restore(ctx context.Context) *models.Account {
	row, err := s.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Errorw("failed to read session pointer", "error", err)
		}
		return nil
	}

	var account models.Account
	if err := json.Unmarshal([]byte(row.Payload), &account); err != nil || account.ID == "" {
		s.log.Warnw("discarding unreadable session pointer", "error", err)
		return nil
	}

	s.Establish(ctx, account)
	return s.Current()
}

func (s *SessionService) savePointer(ctx context.Context, account models.Account) {
	payload, err := json.Marshal(account)
	if err != nil {
		s.log.Errorw("failed to encode session pointer", "account_id", account.ID, "error", err)
		return
	}
	err = s.repo.Put(ctx, &models.ActiveSession{AccountID: account.ID, Payload: string(payload)})
	if err != nil {
		s.log.Errorw("failed to save session pointer", "account_id", account.ID, "error", err)
	}
}
