package cron

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/angelmondragon/clothing-store-backend/pkg/logger"
	"github.com/angelmondragon/clothing-store-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type fakeLock struct {
	held     bool
	releases int
	err      error
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func newTestService(t *testing.T, lock Lock, jobs ...Job) (*Service, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test", Output: buf}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	return svc, buf
}

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "success"}
	failing := &testJob{name: "fail", err: errors.New("boom")}
	lock := &fakeLock{}
	svc, buf := newTestService(t, lock, ok, failing)

	require.NoError(t, svc.RunOnce(context.Background()))
	require.Equal(t, 1, ok.runs)
	require.Equal(t, 1, failing.runs)
	require.Equal(t, 1, lock.releases)
	require.False(t, lock.held)
	require.Contains(t, buf.String(), "cron.job_failed")
	require.Contains(t, buf.String(), "cron.job_completed")
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "guarded"}
	lock := &fakeLock{held: true}
	svc, buf := newTestService(t, lock, job)

	require.NoError(t, svc.RunOnce(context.Background()))
	require.Zero(t, job.runs)
	require.Zero(t, lock.releases)
	require.True(t, strings.Contains(buf.String(), "cron.cycle_skipped"))
}

func TestRunOncePropagatesLockErrors(t *testing.T) {
	svc, _ := newTestService(t, &fakeLock{err: errors.New("redis down")}, &testJob{name: "x"})
	require.Error(t, svc.RunOnce(context.Background()))
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "once"}
	svc, _ := newTestService(t, &fakeLock{}, job)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := svc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewServiceValidates(t *testing.T) {
	_, err := NewService(ServiceParams{Lock: &fakeLock{}})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Logger: logger.New(logger.Options{ServiceName: "x"})})
	require.Error(t, err)
}
