// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/internal/validators"
	"github.com/MKhiriev/go-fin-keeper/models"
)

// Services groups the services of the reference server.
type Services struct {
	ResourceService ResourceService
	AppInfoService  AppInfoService
}

func NewServices(storages *store.Storages, cfg config.App, build models.AppBuildInfo, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg, build)
	if err != nil {
		return nil, fmt.Errorf("error creating app info service: %w", err)
	}

	resources := NewResourceValidationService(validators.NewEntityValidator()).
		Wrap(NewResourceService(storages.ResourceRepository, logger))

	return &Services{
		ResourceService: resources,
		AppInfoService:  appInfo,
	}, nil
}
