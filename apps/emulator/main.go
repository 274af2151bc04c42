package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	echoemu "github.com/trezcool/aula/apps/emulator/echo"
	"github.com/trezcool/aula/core"
	logsvc "github.com/trezcool/aula/services/logger"
	inmemdb "github.com/trezcool/aula/storage/inmem"
)

func main() {
	conf := core.NewConfig()
	if conf.Roble.ProjectID == "" {
		conf.Roble.ProjectID = "local"
	}

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "EMULATOR : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	server := echoemu.NewServer(&echoemu.Options{
		Address:    conf.Emulator.Addr,
		ProjectID:  conf.Roble.ProjectID,
		SecretKey:  conf.Emulator.SecretKey,
		AccessTTL:  conf.Emulator.AccessTTL,
		RefreshTTL: conf.Emulator.RefreshTTL,
		Debug:      conf.Debug,
		Logger:     logger,
		DB:         inmemdb.NewDB(func() string { return uuid.New().String() }),
	})

	logger.Info(fmt.Sprintf("Roble emulator for project %q listening on %s", conf.Roble.ProjectID, conf.Emulator.Addr))
	defer logger.Info("Roble emulator stopped")

	errs := make(chan error, 1)
	go func() {
		errs <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errs:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)
	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}
