package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yukikurage/taskpad/internal/config"
	"github.com/yukikurage/taskpad/internal/database"
	"github.com/yukikurage/taskpad/internal/models"
	"github.com/yukikurage/taskpad/internal/repository"
	"github.com/yukikurage/taskpad/internal/utils"
)

type sessionTestEnv struct {
	db        *gorm.DB
	clock     *utils.FixedClock
	store     *TaskStore
	persister *SnapshotPersister
	session   *SessionService
	auth      *AuthService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	log := zap.NewNop().Sugar()
	db, err := database.Connect(config.Config{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "silent",
	}, log)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, log))

	t.Cleanup(func() {
		database.Close(db)
	})
	return db
}

// newSessionTestEnv wires the services over db the way the application does.
// A long debounce keeps writes pending until something flushes them.
func newSessionTestEnv(t *testing.T, db *gorm.DB) sessionTestEnv {
	t.Helper()

	log := zap.NewNop().Sugar()
	clock := utils.NewFixedClock(testNow)
	store := NewTaskStore(clock)
	persister := NewSnapshotPersister(repository.NewSnapshotRepository(db), log, time.Hour)
	store.Subscribe(persister)
	t.Cleanup(persister.Stop)

	return sessionTestEnv{
		db:        db,
		clock:     clock,
		store:     store,
		persister: persister,
		session:   NewSessionService(repository.NewSessionRepository(db), store, persister, log),
		auth:      NewAuthService(repository.NewUserRepository(db), clock).WithHashCost(bcrypt.MinCost),
	}
}

func (env sessionTestEnv) register(t *testing.T, username string) *models.Account {
	t.Helper()
	account, err := env.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return account
}

func TestSessionService_EstablishLoadsEmptyStore(t *testing.T) {
	env := newSessionTestEnv(t, setupTestDB(t))
	ctx := context.Background()
	alice := env.register(t, "alice")

	assert.Nil(t, env.session.Current())
	env.session.Establish(ctx, *alice)

	current := env.session.Current()
	require.NotNil(t, current)
	assert.Equal(t, "alice", current.Username)
	assert.Empty(t, current.PasswordHash)

	state := env.store.State()
	assert.True(t, state.Active)
	assert.Equal(t, alice.ID, state.AccountID)
	assert.Empty(t, state.Tasks)
	assert.Equal(t, models.DefaultViewConfig(), state.View)
}

func TestSessionService_AccountIsolation(t *testing.T) {
	env := newSessionTestEnv(t, setupTestDB(t))
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	env.session.Establish(ctx, *alice)
	_, err := env.store.AddTask(AddTaskInput{Title: "Alice's task"})
	require.NoError(t, err)
	require.NoError(t, env.store.SetSearchTerm("alice"))

	// Switching accounts flushes alice's pending write before bob's load.
	env.session.Establish(ctx, *bob)
	assert.Empty(t, env.store.State().Tasks)
	assert.Empty(t, env.store.State().View.SearchTerm)

	_, err = env.store.AddTask(AddTaskInput{Title: "Bob's task"})
	require.NoError(t, err)

	env.session.Establish(ctx, *alice)
	tasks := env.store.State().Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, "Alice's task", tasks[0].Title)
	assert.Equal(t, "alice", env.store.State().View.SearchTerm)

	env.session.Establish(ctx, *bob)
	tasks = env.store.State().Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, "Bob's task", tasks[0].Title)
}

func TestSessionService_ClearKeepsDurableSnapshot(t *testing.T) {
	env := newSessionTestEnv(t, setupTestDB(t))
	ctx := context.Background()
	alice := env.register(t, "alice")

	env.session.Establish(ctx, *alice)
	_, err := env.store.AddTask(AddTaskInput{Title: "persist me"})
	require.NoError(t, err)

	env.session.Clear(ctx)
	assert.Nil(t, env.session.Current())
	assert.False(t, env.store.State().Active)
	assert.Empty(t, env.store.State().Tasks)

	_, err = env.store.AddTask(AddTaskInput{Title: "nobody"})
	assert.ErrorIs(t, err, ErrNoActiveSession)

	env.session.Establish(ctx, *alice)
	tasks := env.store.State().Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, "persist me", tasks[0].Title)
}

func TestSessionService_RestoreAfterRestart(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := newSessionTestEnv(t, db)
	alice := first.register(t, "alice")
	first.session.Establish(ctx, *alice)
	_, err := first.store.AddTask(AddTaskInput{Title: "survives restart"})
	require.NoError(t, err)
	first.persister.Flush(ctx)

	second := newSessionTestEnv(t, db)
	restored := second.session.Restore(ctx)
	require.NotNil(t, restored)
	assert.Equal(t, alice.ID, restored.ID)

	tasks := second.store.State().Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, "survives restart", tasks[0].Title)
}

func TestSessionService_RestoreWithoutPointer(t *testing.T) {
	env := newSessionTestEnv(t, setupTestDB(t))
	ctx := context.Background()

	assert.Nil(t, env.session.Restore(ctx))

	alice := env.register(t, "alice")
	env.session.Establish(ctx, *alice)
	env.session.Clear(ctx)

	assert.Nil(t, newSessionTestEnv(t, env.db).session.Restore(ctx))
}
