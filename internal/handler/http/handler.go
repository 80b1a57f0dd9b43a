// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/service"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
)

type Handler struct {
	services *service.Services

	// tokenSignKey verifies bearer tokens; empty turns authentication off.
	tokenSignKey string
	tokenIssuer  string
	hasher       *utils.Hasher

	logger *logger.Logger
}

func NewHandler(services *service.Services, cfg config.App, logger *logger.Logger) *Handler {
	logger.Info().
		Bool("auth", cfg.TokenSignKey != "").
		Bool("hashing", cfg.HashKey != "").
		Msg("http handler created")

	return &Handler{
		services:     services,
		tokenSignKey: cfg.TokenSignKey,
		tokenIssuer:  cfg.TokenIssuer,
		hasher:       utils.NewHasher(cfg.HashKey),
		logger:       logger,
	}
}
