// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-fin-keeper/models"
)

const resourcesTable = "resources"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var resourceColumns = []string{"collection", "id", "user_id", "payload", "updated_at"}

func resourceUpdatedAt(rec models.RemoteRecord) time.Time {
	if rec.UpdatedAt != nil {
		return rec.UpdatedAt.UTC()
	}
	return time.Now().UTC()
}

func buildCreateResourceQuery(rec models.RemoteRecord) (string, []any, error) {
	return psql.Insert(resourcesTable).
		Columns(resourceColumns...).
		Values(string(rec.Collection), rec.ID, rec.UserID, []byte(rec.Payload), resourceUpdatedAt(rec)).
		ToSql()
}

// buildUpsertResourceQuery never moves a record to another owner.
func buildUpsertResourceQuery(rec models.RemoteRecord) (string, []any, error) {
	return psql.Insert(resourcesTable).
		Columns(resourceColumns...).
		Values(string(rec.Collection), rec.ID, rec.UserID, []byte(rec.Payload), resourceUpdatedAt(rec)).
		Suffix(`ON CONFLICT (collection, id) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
			WHERE resources.user_id = EXCLUDED.user_id`).
		ToSql()
}

func buildDeleteResourceQuery(collection models.Collection, id, userID string) (string, []any, error) {
	return psql.Delete(resourcesTable).
		Where(sq.Eq{"collection": string(collection), "id": id, "user_id": userID}).
		ToSql()
}

func buildGetResourceQuery(collection models.Collection, id, userID string) (string, []any, error) {
	return psql.Select(resourceColumns...).
		From(resourcesTable).
		Where(sq.Eq{"collection": string(collection), "id": id, "user_id": userID}).
		ToSql()
}
