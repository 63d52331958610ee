package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewManager(reg)
	require.NoError(t, err)

	m.AuthOutcome("session", "ok")
	m.AuthOutcome("session", "ok")
	m.AuthOutcome("session", "token_expired")
	m.SessionCreated("acme")
	m.SessionsSwept(3)
	m.SessionsSwept(0)
	m.WorkerRun("sweep", nil, 10*time.Millisecond)
	m.WorkerRun("sweep", errors.New("x"), time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.authOutcomes.WithLabelValues("session", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authOutcomes.WithLabelValues("session", "token_expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsCreated.WithLabelValues("acme")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessionsSwept))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.workerRuns.WithLabelValues("sweep", "error")))
}

func TestNewManager_DoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewManager(reg)
	require.NoError(t, err)
	_, err = NewManager(reg)
	require.Error(t, err)
}
