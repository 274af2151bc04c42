package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/aula/apps/container"
	"github.com/trezcool/aula/core"
	logsvc "github.com/trezcool/aula/services/logger"
)

func main() {
	std := log.New(os.Stderr, "AULA : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	if err := conf.Validate(); err != nil {
		std.Fatalf("invalid configuration: %v", err)
	}

	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewConsoleLogger(std, logsvc.ParseLevel(conf.LogLevel))
	} else {
		rl := logsvc.NewRollbarLogger(std, conf)
		defer rl.Close()
		logger = rl
	}

	prefs, closePrefs, err := container.NewPreferences(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening session store: %v", err), err)
	}

	cli := commandLine{
		app: container.New(container.Deps{Conf: conf, Logger: logger, Prefs: prefs}),
		out: os.Stdout,
	}
	err = cli.run(os.Args)
	if cErr := closePrefs(); cErr != nil {
		logger.Error("closing session store", cErr)
	}
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
