package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/taskpad/internal/models"
	"github.com/yukikurage/taskpad/internal/repository"
)

// SnapshotPersister loads and saves per-account task snapshots. Storage
// failures are logged and never returned: in-memory state stays authoritative.
type SnapshotPersister struct {
	repo  repository.SnapshotRepository
	log   *zap.SugaredLogger
	delay time.Duration

	mu             sync.Mutex
	boundAccount   string
	timer          *time.Timer
	pendingAccount string
	pending        *models.Snapshot
	// lastVersion is the newest store version scheduled so far. Listeners run
	// outside the store lock, so events can arrive out of order.
	lastVersion uint64
}

// NewSnapshotPersister creates a persister whose debounced writes fire after delay.
func NewSnapshotPersister(repo repository.SnapshotRepository, log *zap.SugaredLogger, delay time.Duration) *SnapshotPersister {
	return &SnapshotPersister{
		repo:  repo,
		log:   log,
		delay: delay,
	}
}

// Load returns the stored snapshot of accountID, or nil when it is absent,
// corrupt or unreadable.
func (p *SnapshotPersister) Load(ctx context.Context, accountID string) *models.Snapshot {
	if accountID == "" {
		return nil
	}
	row, err := p.repo.Find(ctx, accountID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			p.log.Errorw("failed to load task snapshot", "account_id", accountID, "error", err)
		}
		return nil
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal([]byte(row.Payload), &snapshot); err != nil {
		p.log.Errorw("discarding corrupt task snapshot", "account_id", accountID, "error", err)
		return nil
	}
	return &snapshot
}

// Save writes snapshot for accountID immediately. Failures are logged only.
func (p *SnapshotPersister) Save(ctx context.Context, accountID string, snapshot models.Snapshot) {
	if accountID == "" {
		return
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		p.log.Errorw("failed to encode task snapshot", "account_id", accountID, "error", err)
		return
	}
	err = p.repo.Save(ctx, &models.TaskSnapshot{AccountID: accountID, Payload: string(payload)})
	if err != nil {
		p.log.Errorw("failed to save task snapshot", "account_id", accountID, "error", err)
		return
	}
	p.log.Debugw("task snapshot saved", "account_id", accountID, "tasks", len(snapshot.Tasks))
}

// Bind sets the account whose changes are persisted. An empty id drops every change.
func (p *SnapshotPersister) Bind(accountID string) {
	p.mu.Lock()
	p.boundAccount = accountID
	p.mu.Unlock()
}

// TaskStoreChanged schedules a debounced write of the event's snapshot.
// Loads are not written back, and an event older than one already scheduled
// is dropped.
func (p *SnapshotPersister) TaskStoreChanged(ev ChangeEvent) {
	if ev.Loaded {
		p.mu.Lock()
		p.observe(ev.Version)
		p.mu.Unlock()
		return
	}
	p.schedule(ev.AccountID, ev.Snapshot, ev.Version)
}

// Schedule replaces any pending write with snapshot and restarts the debounce
// timer. Snapshots for an account other than the bound one are dropped.
func (p *SnapshotPersister) Schedule(accountID string, snapshot models.Snapshot) {
	p.schedule(accountID, snapshot, 0)
}

// schedule with a zero version skips the ordering check.
func (p *SnapshotPersister) schedule(accountID string, snapshot models.Snapshot, version uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if version != 0 && !p.observe(version) {
		p.log.Debugw("dropping out-of-order task snapshot", "account_id", accountID, "version", version)
		return
	}
	if accountID == "" || accountID != p.boundAccount {
		return
	}
	p.pendingAccount = accountID
	p.pending = &snapshot
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.delay, p.fire)
}

// Flush writes the pending snapshot now, if any, and cancels the timer.
func (p *SnapshotPersister) Flush(ctx context.Context) {
	accountID, snapshot := p.takePending()
	if snapshot != nil {
		p.Save(ctx, accountID, *snapshot)
	}
}

// Stop cancels a pending write without saving it.
func (p *SnapshotPersister) Stop() {
	p.takePending()
}

// observe records version and reports whether it is newer than every version
// seen before. Callers hold p.mu.
func (p *SnapshotPersister) observe(version uint64) bool {
	if version <= p.lastVersion {
		return false
	}
	p.lastVersion = version
	return true
}

func (p *SnapshotPersister) fire() {
	p.Flush(context.Background())
}

func (p *SnapshotPersister) takePending() (string, *models.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	accountID, snapshot := p.pendingAccount, p.pending
	p.pendingAccount, p.pending = "", nil
	return accountID, snapshot
}
