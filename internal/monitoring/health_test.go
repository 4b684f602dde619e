package monitoring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/orgdirectory/internal/monitoring"
)

func TestHealthManagerEvaluateReadiness(t *testing.T) {
	t.Parallel()

	manager := monitoring.NewHealthManager(time.Second)
	manager.RegisterReadiness(monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	}))
	manager.RegisterReadiness(monitoring.NewCheck("replica", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: "lagging"}
	}))
	manager.RegisterReadiness(monitoring.NewCheck("", nil))

	report := manager.EvaluateReadiness(context.Background())
	require.False(t, report.Healthy())
	require.Equal(t, monitoring.StatusDegraded, report.Status)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "database", report.Checks[0].Component)
	require.Equal(t, "replica", report.Checks[1].Component)
}

func TestHealthManagerWorstStatusWins(t *testing.T) {
	t.Parallel()

	manager := monitoring.NewHealthManager(0)
	manager.RegisterLiveness(monitoring.NewCheck("process", func(context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	}))
	manager.RegisterReadiness(monitoring.NewCheck("down", func(context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusDown}
	}))
	manager.RegisterReadiness(monitoring.NewCheck("slow", func(context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusDegraded}
	}))

	require.True(t, manager.EvaluateLiveness(context.Background()).Healthy())

	report := manager.Evaluate(context.Background())
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Len(t, report.Checks, 3)
}

func TestHealthManagerRecoversPanicsAndEmptyStatus(t *testing.T) {
	t.Parallel()

	manager := monitoring.NewHealthManager(0)
	manager.RegisterLiveness(monitoring.NewCheck("panics", func(context.Context) monitoring.ProbeResult {
		panic("probe exploded")
	}))
	manager.RegisterLiveness(monitoring.NewCheck("silent", func(context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{}
	}))
	manager.RegisterLiveness(monitoring.NewCheck("missing", nil))

	report := manager.EvaluateLiveness(context.Background())
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Len(t, report.Checks, 3)
	require.Equal(t, "panics", report.Checks[0].Component)
	require.Equal(t, "probe exploded", report.Checks[0].Details)
	require.Equal(t, monitoring.StatusDown, report.Checks[1].Status)
	require.Equal(t, "probe not implemented", report.Checks[2].Details)
}

func TestHealthManagerAppliesTimeout(t *testing.T) {
	t.Parallel()

	manager := monitoring.NewHealthManager(10 * time.Millisecond)
	manager.RegisterReadiness(monitoring.NewCheck("blocking", func(ctx context.Context) monitoring.ProbeResult {
		<-ctx.Done()
		return monitoring.ResultFromError(ctx.Err(), 0)
	}))

	report := manager.EvaluateReadiness(context.Background())
	require.Equal(t, monitoring.StatusDegraded, report.Status)
	require.Contains(t, report.Checks[0].Details, "deadline exceeded")
}

func TestResultFromError(t *testing.T) {
	t.Parallel()

	require.Equal(t, monitoring.StatusUp, monitoring.ResultFromError(nil, time.Second).Status)

	down := monitoring.ResultFromError(errors.New("connection refused"), -time.Second)
	require.Equal(t, monitoring.StatusDown, down.Status)
	require.Equal(t, "connection refused", down.Details)
	require.Zero(t, down.Duration)

	require.Equal(t, monitoring.StatusDegraded, monitoring.ResultFromError(context.Canceled, 0).Status)
}
