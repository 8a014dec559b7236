package pgdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OutboxChannel — канал NOTIFY, который будит outbox-воркер.
const OutboxChannel = "outbox_pending"

// DefaultStaleAfter — через сколько событие в processing считается брошенным.
const DefaultStaleAfter = 5 * time.Minute

type OutboxEventRepo struct {
	pool       *pgxpool.Pool
	conv       converter.OutboxEventConverter
	staleAfter time.Duration
}

func NewOutboxEventRepo(pool *pgxpool.Pool, conv converter.OutboxEventConverter, staleAfter time.Duration) *OutboxEventRepo {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}

	return &OutboxEventRepo{
		pool:       pool,
		conv:       conv,
		staleAfter: staleAfter,
	}
}

// Create пишет событие в текущей транзакции; без транзакции возвращает ErrTransactionNotFound.
// NOTIFY доставляется только после коммита.
func (o *OutboxEventRepo) Create(ctx context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model := o.conv.ToModel(event)
	query := `
		INSERT INTO outbox_events (
			event_id,
			event_type,
			product_id,
			payload,
			status,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at;
	`

	if err := tx.QueryRow(ctx, query,
		model.EventID,
		model.EventType,
		model.ProductID,
		model.Payload,
		model.Status,
		model.CreatedAt,
	).Scan(&model.ID, &model.CreatedAt); err != nil {
		if postgresDuplicate(err) {
			return nil, fmt.Errorf("%s: event with id %s already exists", whereami.WhereAmI(), event.EventID)
		}

		return nil, fmt.Errorf("%s: failed to insert event: %w", whereami.WhereAmI(), err)
	}

	if _, err = tx.Exec(ctx, "NOTIFY "+OutboxChannel); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(model), nil
}

// GetAndMarkAsProcessing забирает до limit событий: ожидающие и зависшие в processing дольше staleAfter
// (воркер упал, не успев отметить событие). Параллельные воркеры не пересекаются (SKIP LOCKED).
func (o *OutboxEventRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = now()
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE status = $2
			   OR (status = $1 AND processing_started_at < now() - make_interval(secs => $4))
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, event_id::text, event_type, product_id::text, payload, status, created_at, processed_at
	`

	var models []*converter.OutboxEventModel
	err := pgx.BeginFunc(ctx, o.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, usecase.Processing, usecase.Pending, limit, o.staleAfter.Seconds())
		if err != nil {
			return fmt.Errorf("failed to claim events: %w", err)
		}

		models, err = pgx.CollectRows(rows, scanOutboxEvent)
		return err
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToArrEntity(models), nil
}

func scanOutboxEvent(row pgx.CollectableRow) (*converter.OutboxEventModel, error) {
	var (
		model       converter.OutboxEventModel
		processedAt sql.NullTime
	)

	if err := row.Scan(
		&model.ID,
		&model.EventID,
		&model.EventType,
		&model.ProductID,
		&model.Payload,
		&model.Status,
		&model.CreatedAt,
		&processedAt,
	); err != nil {
		return nil, err
	}

	if processedAt.Valid {
		model.ProcessedAt = &processedAt.Time
	}

	return &model, nil
}

// MarkAsProcessed идемпотентен: уже обработанное событие не считается ошибкой.
func (o *OutboxEventRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	query := `
		UPDATE outbox_events
		SET status = $1, processed_at = NOW()
		WHERE id = $2 AND status = $3
	`

	if _, err := o.pool.Exec(ctx, query, usecase.Processed, id, usecase.Processing); err != nil {
		return fmt.Errorf("%s: failed to mark event %d as processed: %w", whereami.WhereAmI(), id, err)
	}

	return nil
}

// MarkAsPending возвращает неотправленное событие в очередь.
func (o *OutboxEventRepo) MarkAsPending(ctx context.Context, id int64) error {
	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NULL
		WHERE id = $2 AND status = $3
	`

	if _, err := o.pool.Exec(ctx, query, usecase.Pending, id, usecase.Processing); err != nil {
		return fmt.Errorf("%s: failed to return event %d to pending: %w", whereami.WhereAmI(), id, err)
	}

	return nil
}
