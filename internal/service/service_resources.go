// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/models"
)

type resourceService struct {
	resourceRepository store.ResourceRepository

	logger *logger.Logger
}

func NewResourceService(resourceRepository store.ResourceRepository, logger *logger.Logger) ResourceService {
	return &resourceService{
		resourceRepository: resourceRepository,
		logger:             logger,
	}
}

func (r *resourceService) Create(ctx context.Context, rec models.RemoteRecord) (bool, error) {
	return r.resourceRepository.Create(ctx, rec)
}

func (r *resourceService) Upsert(ctx context.Context, rec models.RemoteRecord) error {
	return r.resourceRepository.Upsert(ctx, rec)
}

func (r *resourceService) Delete(ctx context.Context, collection models.Collection, id, userID string) error {
	return r.resourceRepository.Delete(ctx, collection, id, userID)
}

func (r *resourceService) Get(ctx context.Context, collection models.Collection, id, userID string) (models.RemoteRecord, error) {
	return r.resourceRepository.Get(ctx, collection, id, userID)
}
