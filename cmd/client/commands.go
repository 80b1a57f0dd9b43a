// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/MKhiriev/go-fin-keeper/internal/client"
	"github.com/MKhiriev/go-fin-keeper/models"
)

const usage = `usage: fin-client [config flags] <run|record|update|get|list|delete|retry|sync|stats|version> [command flags]`

var errUsage = errors.New("invalid usage")

// engine is the part of client.App the commands drive.
type engine interface {
	client.Core
	Run(ctx context.Context) error
	Recover(ctx context.Context) error
}

// splitArgs separates config flags from the command and its own flags.
// Every config flag takes a value, so a bare "-flag" consumes the next
// argument.
func splitArgs(args []string) (configArgs []string, command string, commandArgs []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			if i+1 < len(args) {
				return args[:i], args[i+1], args[i+2:]
			}
			return args[:i], "", nil
		}
		if !strings.HasPrefix(arg, "-") {
			return args[:i], arg, args[i+1:]
		}
		if !strings.Contains(arg, "=") {
			i++
		}
	}
	return args, "", nil
}

type entityFlags struct {
	collection string
	id         string
	owner      string
	payload    string
}

func parseEntityFlags(name string, args []string) (entityFlags, error) {
	var f entityFlags
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.collection, "collection", "", "transactions, savings, debts or chitFunds")
	fs.StringVar(&f.id, "id", "", "record identifier")
	fs.StringVar(&f.owner, "owner", "", "record owner, defaults to the configured user")
	fs.StringVar(&f.payload, "payload", "", "record payload as JSON, \"-\" reads stdin")

	if err := fs.Parse(args); err != nil {
		return f, fmt.Errorf("%w: %w", errUsage, err)
	}
	if f.collection == "" {
		return f, fmt.Errorf("%w: -collection is required", errUsage)
	}
	return f, nil
}

func (f entityFlags) request(stdin io.Reader) (models.RecordRequest, error) {
	payload := f.payload
	if payload == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return models.RecordRequest{}, fmt.Errorf("read payload: %w", err)
		}
		payload = string(b)
	}
	if strings.TrimSpace(payload) == "" {
		return models.RecordRequest{}, fmt.Errorf("%w: -payload is required", errUsage)
	}

	return models.RecordRequest{
		ID:      f.id,
		UserID:  f.owner,
		Payload: json.RawMessage(payload),
	}, nil
}

func (f entityFlags) requireID() error {
	if f.id == "" {
		return fmt.Errorf("%w: -id is required", errUsage)
	}
	return nil
}

func runCommand(ctx context.Context, app engine, command string, args []string, stdin io.Reader, stdout io.Writer) error {
	switch command {
	case "run":
		return app.Run(ctx)

	case "sync":
		if err := app.Recover(ctx); err != nil {
			return err
		}
		report, err := app.TriggerSync(ctx)
		if err != nil {
			return err
		}
		return printJSON(stdout, report)

	case "stats":
		stats, err := app.GetStats(ctx)
		if err != nil {
			return err
		}
		return printJSON(stdout, stats)
	}

	switch command {
	case "record", "update", "list", "get", "delete", "retry":
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	f, err := parseEntityFlags(command, args)
	if err != nil {
		return err
	}
	collection := models.Collection(f.collection)

	switch command {
	case "record", "update":
		req, err := f.request(stdin)
		if err != nil {
			return err
		}

		record := app.RecordEntity
		if command == "update" {
			if err = f.requireID(); err != nil {
				return err
			}
			record = app.UpdateEntity
		}

		e, err := record(ctx, collection, req)
		if err != nil {
			return err
		}
		return printJSON(stdout, e)

	case "list":
		list, err := app.ListEntities(ctx, collection, f.owner)
		if err != nil {
			return err
		}
		return printJSON(stdout, list)

	case "get":
		if err = f.requireID(); err != nil {
			return err
		}
		e, err := app.GetEntity(ctx, collection, f.id)
		if err != nil {
			return err
		}
		return printJSON(stdout, e)

	case "delete":
		if err = f.requireID(); err != nil {
			return err
		}
		return app.DeleteEntity(ctx, collection, f.id)

	case "retry":
		if err = f.requireID(); err != nil {
			return err
		}
		return app.RetryEntity(ctx, collection, f.id)
	}

	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
