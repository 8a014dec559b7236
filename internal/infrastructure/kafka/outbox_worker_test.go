package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

type memOutbox struct {
	mu     sync.Mutex
	events []*usecase.OutboxEvent
}

func (m *memOutbox) add(ev *usecase.OutboxEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev.ID = int64(len(m.events) + 1)
	ev.Status = usecase.Pending
	m.events = append(m.events, ev)
}

func (m *memOutbox) Create(_ context.Context, ev *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	m.add(ev)
	return ev, nil
}

func (m *memOutbox) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*usecase.OutboxEvent
	for _, ev := range m.events {
		if len(out) == limit {
			break
		}
		if ev.Status == usecase.Pending {
			ev.Status = usecase.Processing
			cp := *ev
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memOutbox) setStatus(id int64, from, to usecase.OutboxStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range m.events {
		if ev.ID == id && ev.Status == from {
			ev.Status = to
		}
	}
}

func (m *memOutbox) MarkAsProcessed(_ context.Context, id int64) error {
	m.setStatus(id, usecase.Processing, usecase.Processed)
	return nil
}

func (m *memOutbox) MarkAsPending(_ context.Context, id int64) error {
	m.setStatus(id, usecase.Processing, usecase.Pending)
	return nil
}

func (m *memOutbox) count(status usecase.OutboxStatus) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.events {
		if ev.Status == status {
			n++
		}
	}
	return n
}

type memProducer struct {
	mu       sync.Mutex
	keys     []string
	failures int
}

func (p *memProducer) WriteRawMessage(_ context.Context, req *usecase.WriteRawMessageReq) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("dial tcp: connection refused")
	}
	p.keys = append(p.keys, req.Key)
	return nil
}

func (p *memProducer) sent() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

// chanNotifier пробрасывает уведомления из теста.
type chanNotifier struct {
	ch chan struct{}
}

func (n *chanNotifier) Run(ctx context.Context, onConnect func(), onNotify func(string)) {
	onConnect()
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.ch:
			onNotify("")
		}
	}
}

func TestOutboxWorker_DrainsOnStartAndNotify(t *testing.T) {
	repo := &memOutbox{}
	producer := &memProducer{}
	notifier := &chanNotifier{ch: make(chan struct{})}

	for i := 0; i < 5; i++ {
		repo.add(&usecase.OutboxEvent{EventID: "e", ProductID: "p-start"})
	}

	w := NewOutboxWorker(repo, nopLogger{}, producer, notifier, time.Hour, 2)
	w.Start(context.Background())
	t.Cleanup(func() { _ = w.Stop(context.Background()) })

	require.Eventually(t, func() bool { return repo.count(usecase.Processed) == 5 }, time.Second, 5*time.Millisecond)

	repo.add(&usecase.OutboxEvent{EventID: "e6", ProductID: "p-new"})
	notifier.ch <- struct{}{}

	require.Eventually(t, func() bool { return repo.count(usecase.Processed) == 6 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "p-new", producer.sent()[5])
}

func TestOutboxWorker_FailedEventsReturnToPending(t *testing.T) {
	repo := &memOutbox{}
	producer := &memProducer{failures: 1}
	notifier := &chanNotifier{ch: make(chan struct{})}
	repo.add(&usecase.OutboxEvent{EventID: "e1", ProductID: "p1"})

	w := NewOutboxWorker(repo, nopLogger{}, producer, notifier, 20*time.Millisecond, 10)
	w.Start(context.Background())
	t.Cleanup(func() { _ = w.Stop(context.Background()) })

	require.Eventually(t, func() bool { return repo.count(usecase.Processed) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"p1"}, producer.sent())
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("dial tcp 10.0.0.1:9092: i/o timeout")))
	assert.False(t, isRetryableError(errors.New("message too large")))
	assert.False(t, isRetryableError(nil))
}
