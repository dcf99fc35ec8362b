package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai2sql/internal/pkg/config"
)

type fakeChecker struct {
	calls int
	err   error
}

func (f *fakeChecker) CheckAll(ctx context.Context) error {
	f.calls++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	return f.err
}

func TestStartRegistersConnectionCheck(t *testing.T) {
	s := NewScheduler(zap.NewNop(), &fakeChecker{})
	require.NoError(t, s.Start(&config.SchedulerConfig{ConnectionCheckCron: "0 0 3 * * *"}))
	defer s.Stop()

	_, ok := s.Entries()[jobConnectionCheck]
	assert.True(t, ok)
}

func TestStartUsesDefaultCron(t *testing.T) {
	s := NewScheduler(zap.NewNop(), &fakeChecker{})
	require.NoError(t, s.Start(&config.SchedulerConfig{}))
	defer s.Stop()

	assert.Len(t, s.Entries(), 1)
}

func TestStartRejectsBadCron(t *testing.T) {
	s := NewScheduler(zap.NewNop(), &fakeChecker{})
	assert.Error(t, s.Start(&config.SchedulerConfig{ConnectionCheckCron: "not a cron"}))
}

func TestRunConnectionCheck(t *testing.T) {
	checker := &fakeChecker{err: errors.New("boom")}
	s := NewScheduler(zap.NewNop(), checker)

	assert.EqualError(t, s.RunConnectionCheck(), "boom")
	assert.Equal(t, 1, checker.calls)
}
