package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	config "github.com/DRSN-tech/insumos-backend/internal/cfg"
	"github.com/DRSN-tech/insumos-backend/internal/delivery/cli"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
)

func main() {
	log := logger.NewSlogLogger()

	config.LoadDotEnv(log)

	dbCfg, err := config.LoadPGDB(log)
	if err != nil {
		log.Errorf(err, "failed to load database config")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	backend := cli.NewPgBackend(dbCfg, log)
	err = cli.NewRootCmd(backend).ExecuteContext(ctx)
	backend.Close()
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
