// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-fin-keeper/models"
)

// collectionTables maps entity collections to their SQLite tables. Table
// names are never taken from input.
var collectionTables = map[models.Collection]string{
	models.Transactions: "transactions",
	models.Savings:      "savings",
	models.Debts:        "debts",
	models.ChitFunds:    "chit_funds",
}

const queueTable = "sync_queue"

var entityColumns = []string{"id", "user_id", "payload", "sync_status", "deleted", "created_at", "updated_at"}

var queueColumns = []string{
	"id", "collection", "entity_id", "user_id", "operation", "payload",
	"created_at", "retry_count", "next_retry_at", "last_error", "state",
}

func tableFor(collection models.Collection) (string, error) {
	table, ok := collectionTables[collection]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return table, nil
}

func buildPutEntityQuery(table string, e models.Entity) (string, []any, error) {
	return sq.Insert(table).
		Columns(entityColumns...).
		Values(e.ID, e.UserID, string(e.Payload), string(e.SyncStatus), e.Deleted, e.CreatedAt.UTC(), e.UpdatedAt.UTC()).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			payload = excluded.payload,
			sync_status = excluded.sync_status,
			deleted = excluded.deleted,
			updated_at = excluded.updated_at`).
		ToSql()
}

func buildGetEntityQuery(table, id string) (string, []any, error) {
	return sq.Select(entityColumns...).
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildListByOwnerQuery(table, ownerID string) (string, []any, error) {
	return sq.Select(entityColumns...).
		From(table).
		Where(sq.Eq{"user_id": ownerID, "deleted": false}).
		OrderBy("id").
		ToSql()
}

func buildListByStatusQuery(table string, statuses []models.SyncStatus) (string, []any, error) {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}

	return sq.Select(entityColumns...).
		From(table).
		Where(sq.Eq{"sync_status": values}).
		OrderBy("id").
		ToSql()
}

func buildSetStatusQuery(table, id string, status models.SyncStatus) (string, []any, error) {
	return sq.Update(table).
		Set("sync_status", string(status)).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildTombstoneQuery(table, id string, now time.Time) (string, []any, error) {
	return sq.Update(table).
		Set("deleted", true).
		Set("updated_at", now.UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildPurgeQuery(table, id string) (string, []any, error) {
	return sq.Delete(table).Where(sq.Eq{"id": id}).ToSql()
}

func buildCountVisibleQuery(table string) (string, []any, error) {
	return sq.Select("COUNT(*)").From(table).Where(sq.Eq{"deleted": false}).ToSql()
}

func buildCountByStatusQuery(table string) (string, []any, error) {
	return sq.Select("sync_status", "COUNT(*)").From(table).GroupBy("sync_status").ToSql()
}

// queue

func buildGetLiveQueueItemQuery(collection models.Collection, entityID string) (string, []any, error) {
	return sq.Select(queueColumns...).
		From(queueTable).
		Where(sq.Eq{"collection": string(collection), "entity_id": entityID}).
		ToSql()
}

func buildGetQueueItemByIDQuery(id string) (string, []any, error) {
	return sq.Select(queueColumns...).From(queueTable).Where(sq.Eq{"id": id}).ToSql()
}

func buildInsertQueueItemQuery(item models.QueueItem) (string, []any, error) {
	return sq.Insert(queueTable).
		Columns(queueColumns...).
		Values(
			item.ID, string(item.Collection), item.EntityID, item.UserID, string(item.Operation),
			nullablePayload(item.Payload), item.CreatedAt.UnixMilli(), item.RetryCount,
			item.NextRetryAt.UnixMilli(), item.LastError, string(item.State),
		).
		ToSql()
}

func buildReplaceQueueItemQuery(item models.QueueItem) (string, []any, error) {
	return sq.Update(queueTable).
		SetMap(map[string]any{
			"id":            item.ID,
			"user_id":       item.UserID,
			"operation":     string(item.Operation),
			"payload":       nullablePayload(item.Payload),
			"created_at":    item.CreatedAt.UnixMilli(),
			"retry_count":   item.RetryCount,
			"next_retry_at": item.NextRetryAt.UnixMilli(),
			"last_error":    item.LastError,
			"state":         string(item.State),
		}).
		Where(sq.Eq{"collection": string(item.Collection), "entity_id": item.EntityID}).
		ToSql()
}

func buildNextReadyQuery(collection models.Collection, now time.Time, exclude []string) (string, []any, error) {
	query := sq.Select(queueColumns...).
		From(queueTable).
		Where(sq.Eq{"state": string(models.QueueQueued)}).
		Where(sq.LtOrEq{"next_retry_at": now.UnixMilli()})

	if collection != "" {
		query = query.Where(sq.Eq{"collection": string(collection)})
	}
	if len(exclude) > 0 {
		query = query.Where(sq.NotEq{"id": exclude})
	}

	return query.OrderBy("seq").Limit(1).ToSql()
}

func buildClaimQueueItemQuery(id string) (string, []any, error) {
	return sq.Update(queueTable).
		Set("state", string(models.QueueInFlight)).
		Where(sq.Eq{"id": id, "state": string(models.QueueQueued)}).
		ToSql()
}

func buildUpdateQueueStateQuery(item models.QueueItem) (string, []any, error) {
	return sq.Update(queueTable).
		Set("retry_count", item.RetryCount).
		Set("next_retry_at", item.NextRetryAt.UnixMilli()).
		Set("last_error", item.LastError).
		Set("state", string(item.State)).
		Where(sq.Eq{"id": item.ID}).
		ToSql()
}

func buildDeleteQueueItemQuery(id string) (string, []any, error) {
	return sq.Delete(queueTable).Where(sq.Eq{"id": id}).ToSql()
}

func buildDeleteQueueItemByEntityQuery(collection models.Collection, entityID string) (string, []any, error) {
	return sq.Delete(queueTable).
		Where(sq.Eq{"collection": string(collection), "entity_id": entityID}).
		ToSql()
}

func buildListQueueQuery() (string, []any, error) {
	return sq.Select(queueColumns...).From(queueTable).OrderBy("seq").ToSql()
}

func buildCountQueueByStateQuery() (string, []any, error) {
	return sq.Select("state", "COUNT(*)").From(queueTable).GroupBy("state").ToSql()
}

// buildResetInFlightQuery returns interrupted items to the queue. The item
// may have reached the server, so a missing last_error is filled in to keep
// it counted as attempted.
func buildResetInFlightQuery() (string, []any, error) {
	return sq.Update(queueTable).
		Set("state", string(models.QueueQueued)).
		Set("last_error", sq.Expr("COALESCE(last_error, ?)", interruptedError)).
		Where(sq.Eq{"state": string(models.QueueInFlight)}).
		ToSql()
}

// interruptedError marks items whose attempt was cut short by a restart.
const interruptedError = "interrupted before completion"

// nullablePayload stores an absent payload (delete operations) as NULL.
func nullablePayload(payload []byte) any {
	if len(payload) == 0 {
		return nil
	}
	return string(payload)
}
