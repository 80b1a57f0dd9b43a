// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Command fin-client runs the offline-first sync engine.
//
//	fin-client [config flags] run
//	fin-client [config flags] record -collection transactions -payload '{...}' [-id ID]
//	fin-client [config flags] update -collection debts -id ID -payload '{...}'
//	fin-client [config flags] get|delete|retry -collection savings -id ID
//	fin-client [config flags] list -collection chitFunds [-owner USER]
//	fin-client [config flags] sync
//	fin-client [config flags] stats
//
// A payload of "-" is read from stdin. Results are printed as JSON.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-fin-keeper/internal/client"
	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	configArgs, command, commandArgs := splitArgs(os.Args[1:])
	if command == "" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if command == "version" {
		fmt.Println(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit))
		return
	}

	cfg, err := config.GetClientConfig(configArgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error getting configs: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewClientLogger("fin-keeper-client", logger.FileOptions{
		Path:       cfg.Log.FilePath,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err = logger.SetLevel(cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	app, err := client.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("init client app error")
		fmt.Fprintf(os.Stderr, "init client app: %v\n", err)
		os.Exit(1)
	}

	err = runCommand(ctx, app, command, commandArgs, os.Stdin, os.Stdout)
	if closeErr := app.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("close local storage")
	}

	if err != nil {
		log.Error().Err(err).Str("command", command).Msg("client command failed")
		fmt.Fprintf(os.Stderr, "%s: %v\n", command, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
