package cli

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/cfg"
	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/internal/repository/pgdb"
	"github.com/DRSN-tech/insumos-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
	"github.com/DRSN-tech/insumos-backend/pkg/postgres"
)

const connectTimeout = 10 * time.Second

// PgBackend выполняет команды напрямую против PostgreSQL, без Redis, MinIO и Kafka.
type PgBackend struct {
	cfg    *cfg.PGDBCfg
	logger logger.Logger

	mu sync.Mutex
	db *postgres.PgDatabase
}

func NewPgBackend(cfg *cfg.PGDBCfg, logger logger.Logger) *PgBackend {
	return &PgBackend{cfg: cfg, logger: logger}
}

func (b *PgBackend) MigrateUp(_ context.Context, source string) error {
	return postgres.RunMigrations(b.cfg.DSN(), source, b.logger)
}

func (b *PgBackend) MigrateDown(_ context.Context, source string, steps int) error {
	return postgres.RollbackMigrations(b.cfg.DSN(), source, steps, b.logger)
}

func (b *PgBackend) ListProducts(ctx context.Context) ([]domain.Product, error) {
	db, err := b.connect(ctx)
	if err != nil {
		return nil, err
	}

	repo := pgdb.NewProductRepo(db.Pool, converter.NewProductConverterImpl(), b.logger)
	return repo.FetchAll(ctx)
}

// CreateAdmin проходит через AuthUseCase, чтобы правила пароля и хэширование совпадали с сервисом.
func (b *PgBackend) CreateAdmin(ctx context.Context, email, password string) (*domain.Admin, error) {
	db, err := b.connect(ctx)
	if err != nil {
		return nil, err
	}

	admins := pgdb.NewAdminRepo(db.Pool, converter.NewAdminConverterImpl())
	auth := usecase.NewAuthUC(admins, nil, 0, b.logger)
	return auth.RegisterAdmin(ctx, email, password)
}

func (b *PgBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db != nil {
		b.db.Close()
		b.db = nil
	}
}

func (b *PgBackend) connect(ctx context.Context) (*postgres.PgDatabase, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db != nil {
		return b.db, nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := postgres.Connect(ctx, b.cfg)
	if err != nil {
		return nil, e.Repository("PgBackend.connect", err)
	}

	b.db = db
	return db, nil
}
