// Package cli содержит команды catalogctl: миграции, создание администратора, просмотр каталога.
package cli

import (
	"context"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/spf13/cobra"
)

// Backend — то, с чем работают команды. Подключение к БД открывается лениво.
type Backend interface {
	MigrateUp(ctx context.Context, source string) error
	MigrateDown(ctx context.Context, source string, steps int) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateAdmin(ctx context.Context, email, password string) (*domain.Admin, error)
	Close()
}

func NewRootCmd(backend Backend) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Administrative tool for the insumos catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCmd(backend))
	cmd.AddCommand(newAdminCmd(backend))
	cmd.AddCommand(newProductsCmd(backend))
	return cmd
}
