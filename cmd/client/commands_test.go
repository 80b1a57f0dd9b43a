// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-fin-keeper/models"
)

// fakeEngine records the calls commands make.
type fakeEngine struct {
	calls   []string
	lastReq models.RecordRequest
	owner   string
}

func (f *fakeEngine) Run(context.Context) error {
	f.calls = append(f.calls, "run")
	return nil
}

func (f *fakeEngine) Recover(context.Context) error {
	f.calls = append(f.calls, "recover")
	return nil
}

func (f *fakeEngine) RecordEntity(_ context.Context, c models.Collection, req models.RecordRequest) (models.Entity, error) {
	f.calls = append(f.calls, "record "+string(c))
	f.lastReq = req
	return models.Entity{ID: "generated", Collection: c, Payload: req.Payload}, nil
}

func (f *fakeEngine) UpdateEntity(_ context.Context, c models.Collection, req models.RecordRequest) (models.Entity, error) {
	f.calls = append(f.calls, "update "+string(c)+" "+req.ID)
	f.lastReq = req
	return models.Entity{ID: req.ID, Collection: c}, nil
}

func (f *fakeEngine) ListEntities(_ context.Context, c models.Collection, owner string) ([]models.Entity, error) {
	f.calls = append(f.calls, "list "+string(c))
	f.owner = owner
	return []models.Entity{{ID: "a"}, {ID: "b"}}, nil
}

func (f *fakeEngine) GetEntity(_ context.Context, c models.Collection, id string) (models.Entity, error) {
	f.calls = append(f.calls, "get "+string(c)+" "+id)
	return models.Entity{ID: id}, nil
}

func (f *fakeEngine) DeleteEntity(_ context.Context, c models.Collection, id string) error {
	f.calls = append(f.calls, "delete "+string(c)+" "+id)
	return nil
}

func (f *fakeEngine) RetryEntity(_ context.Context, c models.Collection, id string) error {
	f.calls = append(f.calls, "retry "+string(c)+" "+id)
	return nil
}

func (f *fakeEngine) TriggerSync(context.Context) (models.PassReport, error) {
	f.calls = append(f.calls, "sync")
	return models.PassReport{Manual: true, Attempted: 2, Succeeded: 2}, nil
}

func (f *fakeEngine) GetStats(context.Context) (models.Stats, error) {
	f.calls = append(f.calls, "stats")
	return models.Stats{QueueDepth: 3}, nil
}

func (f *fakeEngine) Subscribe() (<-chan models.Event, func()) {
	ch := make(chan models.Event)
	close(ch)
	return ch, func() {}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantConfig  []string
		wantCommand string
		wantRest    []string
	}{
		{
			name:        "flags with separate values",
			args:        []string{"-r", "http://localhost:8080", "-user-id", "u", "record", "-collection", "debts"},
			wantConfig:  []string{"-r", "http://localhost:8080", "-user-id", "u"},
			wantCommand: "record",
			wantRest:    []string{"-collection", "debts"},
		},
		{
			name:        "flags with inline values",
			args:        []string{"-d=fin.db", "sync"},
			wantConfig:  []string{"-d=fin.db"},
			wantCommand: "sync",
			wantRest:    []string{},
		},
		{
			name:        "explicit separator",
			args:        []string{"-d", "fin.db", "--", "stats"},
			wantConfig:  []string{"-d", "fin.db"},
			wantCommand: "stats",
			wantRest:    []string{},
		},
		{
			name:       "no command",
			args:       []string{"-d", "fin.db"},
			wantConfig: []string{"-d", "fin.db"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, cmd, rest := splitArgs(tt.args)
			assert.Equal(t, tt.wantConfig, cfg)
			assert.Equal(t, tt.wantCommand, cmd)
			if tt.wantRest != nil {
				assert.Equal(t, tt.wantRest, rest)
			}
		})
	}
}

func TestRunCommand_Record(t *testing.T) {
	app := &fakeEngine{}
	var out bytes.Buffer

	err := runCommand(context.Background(), app, "record",
		[]string{"-collection", "transactions", "-payload", `{"amount":"10"}`}, nil, &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"record transactions"}, app.calls)
	assert.JSONEq(t, `{"amount":"10"}`, string(app.lastReq.Payload))

	var e models.Entity
	require.NoError(t, json.Unmarshal(out.Bytes(), &e))
	assert.Equal(t, "generated", e.ID)
}

func TestRunCommand_PayloadFromStdin(t *testing.T) {
	app := &fakeEngine{}

	err := runCommand(context.Background(), app, "update",
		[]string{"-collection", "debts", "-id", "d-1", "-payload", "-"},
		strings.NewReader(`{"amount":"7"}`), &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, []string{"update debts d-1"}, app.calls)
	assert.JSONEq(t, `{"amount":"7"}`, string(app.lastReq.Payload))
}

func TestRunCommand_Sync(t *testing.T) {
	app := &fakeEngine{}
	var out bytes.Buffer

	require.NoError(t, runCommand(context.Background(), app, "sync", nil, nil, &out))

	// recovery always runs before the manual pass
	assert.Equal(t, []string{"recover", "sync"}, app.calls)
	var report models.PassReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 2, report.Succeeded)
}

func TestRunCommand_EntityOperations(t *testing.T) {
	app := &fakeEngine{}
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, runCommand(ctx, app, "list", []string{"-collection", "savings", "-owner", "u-2"}, nil, &out))
	require.NoError(t, runCommand(ctx, app, "get", []string{"-collection", "savings", "-id", "s-1"}, nil, &out))
	require.NoError(t, runCommand(ctx, app, "delete", []string{"-collection", "savings", "-id", "s-1"}, nil, &out))
	require.NoError(t, runCommand(ctx, app, "retry", []string{"-collection", "chitFunds", "-id", "c-1"}, nil, &out))
	require.NoError(t, runCommand(ctx, app, "stats", nil, nil, &out))
	require.NoError(t, runCommand(ctx, app, "run", nil, nil, &out))

	assert.Equal(t, []string{
		"list savings",
		"get savings s-1",
		"delete savings s-1",
		"retry chitFunds c-1",
		"stats",
		"run",
	}, app.calls)
	assert.Equal(t, "u-2", app.owner)
}

func TestRunCommand_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		command string
		args    []string
	}{
		{"unknown command", "export", nil},
		{"no collection", "list", nil},
		{"no payload", "record", []string{"-collection", "debts"}},
		{"update without id", "update", []string{"-collection", "debts", "-payload", "{}"}},
		{"delete without id", "delete", []string{"-collection", "debts"}},
		{"unknown flag", "get", []string{"-collection", "debts", "-nope", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &fakeEngine{}
			err := runCommand(context.Background(), app, tt.command, tt.args, strings.NewReader(""), &bytes.Buffer{})

			assert.ErrorIs(t, err, errUsage)
			assert.Empty(t, app.calls)
		})
	}
}
