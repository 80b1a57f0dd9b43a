// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-fin-keeper/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	// FieldID targets the record identifier.
	FieldID = "id"

	// FieldUserID targets the owner identifier.
	FieldUserID = "user_id"

	// FieldCollection targets the collection name.
	FieldCollection = "collection"

	// FieldPayload targets the domain payload, decoded into the typed shape
	// of the collection and checked field by field.
	FieldPayload = "payload"
)

// EntityValidator checks entity records, remote records and the typed
// payloads of every collection.
type EntityValidator struct {
}

func NewEntityValidator() Validator {
	return &EntityValidator{}
}

func (v *EntityValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Entity:
		return v.validateEntity(ctx, value, fields...)
	case *models.Entity:
		return v.validateEntity(ctx, *value, fields...)

	case models.RemoteRecord:
		return v.validateRemoteRecord(ctx, value, fields...)
	case *models.RemoteRecord:
		return v.validateRemoteRecord(ctx, *value, fields...)

	case models.Transaction:
		return validateTransaction(value)
	case *models.Transaction:
		return validateTransaction(*value)

	case models.Saving:
		return validateSaving(value)
	case *models.Saving:
		return validateSaving(*value)

	case models.Debt:
		return validateDebt(value)
	case *models.Debt:
		return validateDebt(*value)

	case models.ChitFund:
		return validateChitFund(value)
	case *models.ChitFund:
		return validateChitFund(*value)

	default:
		return ErrUnsupportedType
	}
}

func (v *EntityValidator) validateEntity(ctx context.Context, entity models.Entity, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldUserID, FieldCollection, FieldPayload}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if strings.TrimSpace(entity.ID) == "" {
				return ErrInvalidID
			}
		case FieldUserID:
			if strings.TrimSpace(entity.UserID) == "" {
				return ErrInvalidUserID
			}
		case FieldCollection:
			if !entity.Collection.IsEntityCollection() {
				return ErrUnknownCollection
			}
		case FieldPayload:
			if err := v.validatePayload(ctx, entity.Collection, entity.Payload); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateRemoteRecord checks what the reference server needs to store a
// record. The server keeps no business rules, so the payload is not decoded
// unless FieldPayload is asked for explicitly.
func (v *EntityValidator) validateRemoteRecord(ctx context.Context, rec models.RemoteRecord, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldUserID, FieldCollection}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if strings.TrimSpace(rec.ID) == "" {
				return ErrInvalidID
			}
		case FieldUserID:
			if strings.TrimSpace(rec.UserID) == "" {
				return ErrInvalidUserID
			}
		case FieldCollection:
			if !rec.Collection.IsEntityCollection() {
				return ErrUnknownCollection
			}
		case FieldPayload:
			if err := v.validatePayload(ctx, rec.Collection, rec.Payload); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *EntityValidator) validatePayload(ctx context.Context, collection models.Collection, raw []byte) error {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return ErrEmptyPayload
	}

	typed, err := models.DecodePayload(collection, raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	return v.Validate(ctx, typed)
}

func validateTransaction(tx models.Transaction) error {
	if !tx.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrEmptyCategory
	}
	if tx.Type != models.Expense && tx.Type != models.Income {
		return ErrInvalidTransactionType
	}
	if tx.Timestamp.IsZero() {
		return ErrMissingTimestamp
	}
	return nil
}

func validateSaving(s models.Saving) error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if !s.TargetAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if s.CurrentAmount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

func validateDebt(d models.Debt) error {
	if strings.TrimSpace(d.Counterparty) == "" {
		return ErrEmptyCounterparty
	}
	if !d.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if d.Direction != models.Lent && d.Direction != models.Borrowed {
		return ErrInvalidDirection
	}
	return nil
}

func validateChitFund(c models.ChitFund) error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Installment.IsPositive() {
		return ErrInvalidAmount
	}
	if c.Members < 2 {
		return ErrInvalidMembers
	}
	if c.DurationMonths <= 0 {
		return ErrInvalidDuration
	}
	if c.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	if c.PaidInstallments < 0 || c.PaidInstallments > c.DurationMonths {
		return ErrInvalidPaidInstallments
	}
	return nil
}
