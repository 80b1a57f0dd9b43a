// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses configuration flags from args.
//
// Flags:
//
//	-a server listen address in format [host]:[port]
//	-r remote API address (client)
//	-d database DSN (SQLite path on the client, PostgreSQL DSN on the server)
//	-c/-config json file path with configs
//	-user-id owner of locally recorded entities
//	-access-token bearer token for the remote API
//	-token-sign-key token verification key (server)
//	-k              request body signing key
//	-token-issuer expected token issuer
//	-request-timeout per-request timeout (e.g., "10s")
//	-base-delay, -max-delay, -max-retries backoff policy
//	-concurrency workers per collection
//	-settle-window, -probe-interval, -sync-interval connectivity and scheduling
//	-log-level, -log-file log settings
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("fin-keeper", flag.ContinueOnError)

	var serverAddress NetAddress
	var remoteAddress, databaseDSN, jsonConfigPath string
	var userID, accessToken, tokenSignKey, tokenIssuer, hashKey string
	var requestTimeout, baseDelay, maxDelay time.Duration
	var settleWindow, probeInterval, syncInterval time.Duration
	var maxRetries, concurrency int
	var logLevel, logFile string

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.StringVar(&remoteAddress, "r", "", "Remote API address")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&userID, "user-id", "", "Owner of local records")
	fs.StringVar(&accessToken, "access-token", "", "Bearer token for the remote API")
	fs.StringVar(&tokenSignKey, "token-sign-key", "", "Token verification key")
	fs.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	fs.StringVar(&hashKey, "k", "", "Request body signing key")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 10s)")
	fs.DurationVar(&baseDelay, "base-delay", 0, "First retry delay")
	fs.DurationVar(&maxDelay, "max-delay", 0, "Retry delay cap")
	fs.IntVar(&maxRetries, "max-retries", 0, "Failed attempts before abandoning")
	fs.IntVar(&concurrency, "concurrency", 0, "Workers per collection")
	fs.DurationVar(&settleWindow, "settle-window", 0, "Online debounce window")
	fs.DurationVar(&probeInterval, "probe-interval", 0, "Connectivity probe period")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Background sync period")
	fs.StringVar(&logLevel, "log-level", "", "Log level")
	fs.StringVar(&logFile, "log-file", "", "Client log file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			TokenSignKey: tokenSignKey,
			TokenIssuer:  tokenIssuer,
			AccessToken:  accessToken,
			UserID:       userID,
			HashKey:      hashKey,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			HTTPAddress:    remoteAddress,
			RequestTimeout: requestTimeout,
		},
		Sync: Sync{
			BaseDelay:     baseDelay,
			MaxDelay:      maxDelay,
			MaxRetries:    maxRetries,
			Concurrency:   concurrency,
			SettleWindow:  settleWindow,
			ProbeInterval: probeInterval,
			Interval:      syncInterval,
		},
		Log: Log{
			Level:    logLevel,
			FilePath: logFile,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// An unset address renders as the empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
