// Package tr связывает репозитории с транзакцией, которую открыл trm-менеджер.
package tr

import (
	"context"

	"github.com/DRSN-tech/insumos-backend/pkg/e"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	trmcontext "github.com/avito-tech/go-transaction-manager/trm/v2/context"
	"github.com/jackc/pgx/v5"
)

// TxFromCtx извлекает pgx.Tx, открытую менеджером транзакций. Без транзакции возвращает ErrTransactionNotFound.
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	t := trmcontext.DefaultManager.Default(ctx)
	if t == nil {
		return nil, e.ErrTransactionNotFound
	}

	tx, ok := t.Transaction().(pgx.Tx)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}

	return tx, nil
}

// Querier возвращает текущую транзакцию или пул, если транзакции в ctx нет.
func Querier(ctx context.Context, db trmpgx.Tr) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, db)
}
