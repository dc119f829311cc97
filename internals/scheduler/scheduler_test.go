package scheduler

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestAddRejectsBadSpec(t *testing.T) {
	s := New(time.UTC, quietLogger())
	err := s.Add("bad", "every now and then", cron.FuncJob(func() {}))
	assert.Error(t, err)
}

func TestRunsAndStopsWithPanickingJob(t *testing.T) {
	s := New(time.UTC, quietLogger())
	ran := make(chan struct{}, 4)

	require.NoError(t, s.Add("panicky", "@every 1s", cron.FuncJob(func() {
		ran <- struct{}{}
		panic("boom")
	})))
	s.Start()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job never ran")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
