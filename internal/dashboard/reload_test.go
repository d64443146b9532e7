package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/accident-dashboard-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRun_RetriesUntilLoaded(t *testing.T) {
	loader := &mockLoader{
		tables: []*domain.Table{fixtureTable()},
		errs:   []error{errors.New("not mounted yet")},
	}
	svc, _ := newService(t, loader, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, svc.Run(ctx))
	require.NoError(t, svc.CheckReadiness(ctx))
	assert.Equal(t, 2, loader.calls)
}

func TestRun_StopsOnCancel(t *testing.T) {
	loader := &mockLoader{errs: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
	svc, _ := newService(t, loader, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := svc.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Error(t, svc.CheckReadiness(context.Background()))
}

func TestStartReloader_InvalidSchedule(t *testing.T) {
	svc, _ := newService(t, &mockLoader{tables: []*domain.Table{fixtureTable()}}, nil, nil)

	_, err := svc.StartReloader(context.Background(), "every now and then")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reload schedule")
}

func TestStartReloader_ReloadsOnSchedule(t *testing.T) {
	loader := &mockLoader{tables: []*domain.Table{fixtureTable()}}
	svc, _ := newService(t, loader, nil, nil)

	c, err := svc.StartReloader(context.Background(), "@every 1s")
	require.NoError(t, err)
	defer c.Stop()

	assert.Eventually(t, func() bool {
		return svc.CheckReadiness(context.Background()) == nil
	}, 3*time.Second, 50*time.Millisecond)
}
