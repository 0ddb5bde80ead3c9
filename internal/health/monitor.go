package health

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/medshare/portal-dashboard/pkg/interfaces"
	"github.com/medshare/portal-dashboard/pkg/logger"
	"github.com/medshare/portal-dashboard/pkg/monitoring"
	"github.com/medshare/portal-dashboard/pkg/types"
)

// Health channel names
const (
	ChannelKafka  = "kafka"
	ChannelFabric = "fabric"
)

// Monitor polls system status on a fixed interval and emits a
// notification for every channel state transition. Each channel is an
// independent state machine over {unknown, up, down}; a poll that
// leaves a channel in its previous state emits nothing. Poll failures
// force both channels down.
type Monitor struct {
	provider interfaces.StatusProvider
	interval time.Duration
	recent   int
	logger   *logger.Logger
	metrics  *monitoring.MetricsCollector

	mu            sync.RWMutex
	kafka         types.ChannelState
	fabric        types.ChannelState
	notifications []types.Notification

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a new health poll monitor
func NewMonitor(provider interfaces.StatusProvider, interval time.Duration, recent int, log *logger.Logger, metrics *monitoring.MetricsCollector) *Monitor {
	return &Monitor{
		provider: provider,
		interval: interval,
		recent:   recent,
		logger:   log,
		metrics:  metrics,
		kafka:    types.ChannelUnknown,
		fabric:   types.ChannelUnknown,
	}
}

// Start begins polling until the context is cancelled or Stop is
// called. The first poll runs immediately.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)

		m.pollOnce(ctx)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.pollOnce(ctx)
			}
		}
	}()
}

// Stop cancels polling and waits for the poll loop to exit
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

// pollOnce queries system status and applies the result to both
// channel state machines
func (m *Monitor) pollOnce(ctx context.Context) {
	status, err := m.provider.GetSystemStatus(ctx)
	if err != nil {
		m.logger.WithComponent("health").WithError(err).Error("System status poll failed")
		m.metrics.RecordHealthPoll("error")
		m.observe(false, false)
		return
	}

	m.metrics.RecordHealthPoll("ok")
	m.observe(status.Kafka, status.Fabric)
}

// observe applies one poll result. A notification is emitted for a
// channel exactly when its recorded state changes, including the very
// first observation out of the unknown state.
func (m *Monitor) observe(kafka, fabric bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.kafka = m.transitionLocked(ChannelKafka, m.kafka, kafka)
	m.fabric = m.transitionLocked(ChannelFabric, m.fabric, fabric)
}

// transitionLocked advances one channel's state machine and returns
// the new state. Callers must hold mu.
func (m *Monitor) transitionLocked(channel string, previous types.ChannelState, up bool) types.ChannelState {
	next := types.ChannelDown
	if up {
		next = types.ChannelUp
	}

	if next == previous {
		return previous
	}

	m.logger.StatusTransition(channel, string(previous), string(next))
	m.metrics.RecordChannelState(channel, up)

	notificationType := types.NotificationError
	if up {
		notificationType = types.NotificationSuccess
	}

	m.notifications = append(m.notifications, types.Notification{
		ID:        uuid.New().String(),
		Channel:   channel,
		Type:      notificationType,
		Message:   channelMessage(channel, up),
		Timestamp: time.Now(),
	})
	m.metrics.RecordNotification(channel, notificationType)

	return next
}

// channelMessage renders the user-facing transition message
func channelMessage(channel string, up bool) string {
	label := "Kafka"
	if channel == ChannelFabric {
		label = "Fabric"
	}
	if up {
		return label + " connection established"
	}
	return label + " connection lost"
}

// Status returns the last recorded channel states as a system status
// report; an unknown channel reads as down
func (m *Monitor) Status() *types.SystemStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &types.SystemStatus{
		Kafka:  m.kafka == types.ChannelUp,
		Fabric: m.fabric == types.ChannelUp,
	}
}

// States returns the raw per-channel states
func (m *Monitor) States() (kafka, fabric types.ChannelState) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.kafka, m.fabric
}

// Recent returns the most recent notifications, newest last. The full
// log is append-only and unbounded; only this window is surfaced.
func (m *Monitor) Recent() []types.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start := len(m.notifications) - m.recent
	if start < 0 {
		start = 0
	}

	window := make([]types.Notification, len(m.notifications)-start)
	copy(window, m.notifications[start:])
	return window
}

// NotificationCount returns the total number of notifications emitted
// since the monitor started
func (m *Monitor) NotificationCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.notifications)
}
