package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskpad.log")

	log, err := New(Options{Level: "debug", File: path})
	require.NoError(t, err)
	log.Infow("snapshot saved", "account_id", "acc-1")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "snapshot saved")
	assert.Contains(t, string(data), "acc-1")
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
}

func TestNew_NoSinksIsNop(t *testing.T) {
	log, err := New(Options{})
	require.NoError(t, err)
	log.Info("dropped")
}
