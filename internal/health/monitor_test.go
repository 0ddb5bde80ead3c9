package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/medshare/portal-dashboard/pkg/logger"
	"github.com/medshare/portal-dashboard/pkg/monitoring"
	"github.com/medshare/portal-dashboard/pkg/types"
)

var testMetrics = monitoring.NewMetricsCollector("health-test")

type fakeStatusProvider struct {
	mu     sync.Mutex
	status types.SystemStatus
	err    error
	calls  int
}

func (f *fakeStatusProvider) GetSystemStatus(ctx context.Context) (*types.SystemStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	return &status, nil
}

func (f *fakeStatusProvider) set(kafka, fabric bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = types.SystemStatus{Kafka: kafka, Fabric: fabric}
	f.err = err
}

func newTestMonitor(provider *fakeStatusProvider, recent int) *Monitor {
	return NewMonitor(provider, time.Hour, recent, logger.New("error"), testMetrics)
}

func TestFirstPollNotifiesBothChannels(t *testing.T) {
	provider := &fakeStatusProvider{}
	provider.set(false, false, nil)

	monitor := newTestMonitor(provider, 2)
	monitor.pollOnce(context.Background())

	assert.Equal(t, 2, monitor.NotificationCount())

	kafka, fabric := monitor.States()
	assert.Equal(t, types.ChannelDown, kafka)
	assert.Equal(t, types.ChannelDown, fabric)
}

func TestUnchangedPollEmitsNothing(t *testing.T) {
	provider := &fakeStatusProvider{}
	provider.set(true, true, nil)

	monitor := newTestMonitor(provider, 2)
	monitor.pollOnce(context.Background())
	assert.Equal(t, 2, monitor.NotificationCount())

	monitor.pollOnce(context.Background())
	assert.Equal(t, 2, monitor.NotificationCount())
}

func TestSingleChannelTransitionEmitsOne(t *testing.T) {
	provider := &fakeStatusProvider{}
	provider.set(false, false, nil)

	monitor := newTestMonitor(provider, 10)
	monitor.pollOnce(context.Background())
	assert.Equal(t, 2, monitor.NotificationCount())

	provider.set(true, false, nil)
	monitor.pollOnce(context.Background())

	assert.Equal(t, 3, monitor.NotificationCount())

	recent := monitor.Recent()
	latest := recent[len(recent)-1]
	assert.Equal(t, ChannelKafka, latest.Channel)
	assert.Equal(t, types.NotificationSuccess, latest.Type)
	assert.Equal(t, "Kafka connection established", latest.Message)

	kafka, fabric := monitor.States()
	assert.Equal(t, types.ChannelUp, kafka)
	assert.Equal(t, types.ChannelDown, fabric)
}

func TestPollFailureForcesChannelsDown(t *testing.T) {
	provider := &fakeStatusProvider{}
	provider.set(true, true, nil)

	monitor := newTestMonitor(provider, 10)
	monitor.pollOnce(context.Background())

	status := monitor.Status()
	assert.True(t, status.Kafka)
	assert.True(t, status.Fabric)

	provider.set(false, false, errors.New("ledger unreachable"))
	monitor.pollOnce(context.Background())

	status = monitor.Status()
	assert.False(t, status.Kafka)
	assert.False(t, status.Fabric)
	assert.Equal(t, 4, monitor.NotificationCount())

	recent := monitor.Recent()
	latest := recent[len(recent)-1]
	assert.Equal(t, types.NotificationError, latest.Type)
	assert.Equal(t, "Fabric connection lost", latest.Message)
}

func TestRecentWindowLimitsNotifications(t *testing.T) {
	provider := &fakeStatusProvider{}
	monitor := newTestMonitor(provider, 2)

	provider.set(false, false, nil)
	monitor.pollOnce(context.Background())
	provider.set(true, true, nil)
	monitor.pollOnce(context.Background())

	assert.Equal(t, 4, monitor.NotificationCount())

	recent := monitor.Recent()
	assert.Len(t, recent, 2)
	assert.Equal(t, types.NotificationSuccess, recent[0].Type)
	assert.Equal(t, types.NotificationSuccess, recent[1].Type)
}

func TestStatusBeforeFirstPollReadsDown(t *testing.T) {
	monitor := newTestMonitor(&fakeStatusProvider{}, 2)

	status := monitor.Status()
	assert.False(t, status.Kafka)
	assert.False(t, status.Fabric)

	kafka, fabric := monitor.States()
	assert.Equal(t, types.ChannelUnknown, kafka)
	assert.Equal(t, types.ChannelUnknown, fabric)
}

func TestStartAndStop(t *testing.T) {
	provider := &fakeStatusProvider{}
	provider.set(true, true, nil)

	monitor := newTestMonitor(provider, 2)
	monitor.Start(context.Background())
	monitor.Stop()

	// the immediate first poll ran before Stop returned
	provider.mu.Lock()
	calls := provider.calls
	provider.mu.Unlock()
	assert.GreaterOrEqual(t, calls, 1)
	assert.Equal(t, 2, monitor.NotificationCount())
}
