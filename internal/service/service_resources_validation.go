// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/utils"
	"github.com/MKhiriev/go-fin-keeper/internal/validators"
	"github.com/MKhiriev/go-fin-keeper/models"
)

// ResourceServiceWrapper defines middleware composition for ResourceService.
// Implementations wrap an existing ResourceService to add behavior such as
// validation.
type ResourceServiceWrapper interface {
	Wrap(ResourceService) ResourceService // returns a decorated ResourceService applying additional behavior
}

// ResourceValidationService checks records before they reach storage and
// makes sure an authenticated caller only touches its own records. The
// caller id is taken from the request context when the auth middleware put
// one there.
type ResourceValidationService struct {
	inner     ResourceService
	validator validators.Validator
}

func NewResourceValidationService(validator validators.Validator) ResourceServiceWrapper {
	return &ResourceValidationService{
		validator: validator,
	}
}

func (v *ResourceValidationService) Create(ctx context.Context, rec models.RemoteRecord) (bool, error) {
	if err := v.check(ctx, rec); err != nil {
		return false, err
	}
	return v.inner.Create(ctx, rec)
}

func (v *ResourceValidationService) Upsert(ctx context.Context, rec models.RemoteRecord) error {
	if err := v.check(ctx, rec); err != nil {
		return err
	}
	return v.inner.Upsert(ctx, rec)
}

func (v *ResourceValidationService) Delete(ctx context.Context, collection models.Collection, id, userID string) error {
	rec := models.RemoteRecord{Collection: collection, ID: id, UserID: userID}
	if err := v.check(ctx, rec); err != nil {
		return err
	}
	return v.inner.Delete(ctx, collection, id, userID)
}

func (v *ResourceValidationService) Get(ctx context.Context, collection models.Collection, id, userID string) (models.RemoteRecord, error) {
	rec := models.RemoteRecord{Collection: collection, ID: id, UserID: userID}
	if err := v.check(ctx, rec); err != nil {
		return models.RemoteRecord{}, err
	}
	return v.inner.Get(ctx, collection, id, userID)
}

func (v *ResourceValidationService) check(ctx context.Context, rec models.RemoteRecord) error {
	if err := v.validator.Validate(ctx, rec); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	if callerID, ok := utils.GetUserIDFromContext(ctx); ok && callerID != rec.UserID {
		return ErrForeignRecord
	}

	return nil
}

func (v *ResourceValidationService) Wrap(inner ResourceService) ResourceService {
	v.inner = inner
	return v
}
