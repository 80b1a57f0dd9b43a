// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-fin-keeper/models"
)

func TestClientStorages_InTxCommits(t *testing.T) {
	ctx := context.Background()
	s := newTestClientStorages(t)

	err := s.InTx(ctx, func(entities EntityRepository, queue QueueRepository) error {
		if err := entities.Put(ctx, testEntity(models.Debts, "d1", "user-1")); err != nil {
			return err
		}
		return queue.Insert(ctx, testQueueItem("q1", models.Debts, "d1", 0))
	})
	require.NoError(t, err)

	_, err = s.Entities.Get(ctx, models.Debts, "d1")
	assert.NoError(t, err)
	_, err = s.Queue.GetLive(ctx, models.Debts, "d1")
	assert.NoError(t, err)
}

func TestClientStorages_InTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestClientStorages(t)

	require.NoError(t, s.Queue.Insert(ctx, testQueueItem("q0", models.Debts, "d1", 0)))

	// вторая вставка в очередь нарушает уникальность, запись сущности откатывается
	err := s.InTx(ctx, func(entities EntityRepository, queue QueueRepository) error {
		if err := entities.Put(ctx, testEntity(models.Debts, "d1", "user-1")); err != nil {
			return err
		}
		return queue.Insert(ctx, testQueueItem("q1", models.Debts, "d1", 0))
	})
	require.ErrorIs(t, err, ErrStorageFailure)

	_, err = s.Entities.Get(ctx, models.Debts, "d1")
	assert.ErrorIs(t, err, ErrEntityNotFound)

	item, err := s.Queue.GetLive(ctx, models.Debts, "d1")
	require.NoError(t, err)
	assert.Equal(t, "q0", item.ID)

	callerErr := errors.New("stop")
	err = s.InTx(ctx, func(entities EntityRepository, _ QueueRepository) error {
		require.NoError(t, entities.Put(ctx, testEntity(models.Savings, "s1", "user-1")))
		return callerErr
	})
	assert.ErrorIs(t, err, callerErr)

	list, err := s.Entities.ListByOwner(ctx, models.Savings, "user-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
