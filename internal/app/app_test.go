package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yukikurage/taskpad/internal/config"
	"github.com/yukikurage/taskpad/internal/services"
)

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "taskpad.db")
	cfg.LogLevel = "silent"
	return cfg
}

func TestApp_CloseFlushesAndReopenRestores(t *testing.T) {
	cfg := testConfig(t)
	log := zap.NewNop().Sugar()
	notifier := services.NewLogNotifier(log)
	ctx := context.Background()

	first, err := Open(cfg, log, notifier)
	require.NoError(t, err)

	account, err := first.Auth.Register(ctx, services.RegisterInput{Username: "alice", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	first.Session.Establish(ctx, *account)

	_, err = first.Store.AddTask(services.AddTaskInput{Title: "Buy milk"})
	require.NoError(t, err)
	require.NoError(t, first.Close(ctx))

	second, err := Open(cfg, log, notifier)
	require.NoError(t, err)
	t.Cleanup(func() { second.Close(context.Background()) })

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	second.Start(runCtx)

	current := second.Session.Current()
	require.NotNil(t, current)
	assert.Equal(t, "alice", current.Username)

	tasks := second.Store.State().Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title)
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBDriver = "oracle"

	_, err := Open(cfg, zap.NewNop().Sugar(), services.NewLogNotifier(zap.NewNop().Sugar()))
	assert.Error(t, err)
}
