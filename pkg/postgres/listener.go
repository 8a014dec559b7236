package postgres

import (
	"context"
	"time"

	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/jitter"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Listener держит отдельное соединение с LISTEN на канал и переподключается с backoff.
type Listener struct {
	pool    *pgxpool.Pool
	channel string
	logger  logger.Logger
	backoff jitter.Backoff
}

func NewListener(pool *pgxpool.Pool, channel string, maxDelay time.Duration, logger logger.Logger) *Listener {
	return &Listener{
		pool:    pool,
		channel: channel,
		logger:  logger,
		backoff: jitter.Backoff{Base: 500 * time.Millisecond, Max: maxDelay},
	}
}

// Run блокируется до отмены ctx. onConnect вызывается после каждого (пере)подключения:
// уведомления, пришедшие пока соединения не было, потеряны, и подписчик должен перечитать состояние.
func (l *Listener) Run(ctx context.Context, onConnect func(), onNotify func(payload string)) {
	for ctx.Err() == nil {
		err := l.listen(ctx, onConnect, onNotify)
		if ctx.Err() != nil {
			return
		}

		delay := l.backoff.Next()
		l.logger.Warnf("LISTEN %s lost: %v. Reconnecting in %s", l.channel, err, delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

func (l *Listener) listen(ctx context.Context, onConnect func(), onNotify func(payload string)) error {
	const op = "Listener.listen"

	pooled, err := l.pool.Acquire(ctx)
	if err != nil {
		return e.Wrap(op, err)
	}
	// Соединение в состоянии LISTEN нельзя возвращать в пул.
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return e.Wrap(op, err)
	}

	l.logger.Infof("Subscribed to '%s' channel", l.channel)
	l.backoff.Reset()
	onConnect()

	for {
		notif, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return e.Wrap(op, err)
		}

		onNotify(notif.Payload)
	}
}
