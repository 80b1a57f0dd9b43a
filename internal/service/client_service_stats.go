// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/models"
)

type clientStatsService struct {
	entities store.EntityRepository
	queue    *SyncQueue
}

func newClientStatsService(entities store.EntityRepository, queue *SyncQueue) ClientStatsService {
	return &clientStatsService{entities: entities, queue: queue}
}

// GetStats computes a snapshot from the local store. Every collection and
// every status is present in the maps, zero counts included.
func (s *clientStatsService) GetStats(ctx context.Context) (models.Stats, error) {
	perCollection, err := s.entities.CountByCollection(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	perStatus, err := s.entities.CountByStatus(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	depth, err := s.queue.Depth(ctx)
	if err != nil {
		return models.Stats{}, err
	}

	stats := models.Stats{
		PerCollectionCounts: make(map[models.Collection]int, len(models.EntityCollections)),
		PerStatusCounts:     make(map[models.SyncStatus]int, len(models.AllSyncStatuses)),
		QueueDepth:          depth.Outstanding(),
		InFlight:            depth.InFlight,
		Abandoned:           depth.Abandoned,
	}
	for _, c := range models.EntityCollections {
		stats.PerCollectionCounts[c] = perCollection[c]
	}
	for _, st := range models.AllSyncStatuses {
		stats.PerStatusCounts[st] = perStatus[st]
	}

	return stats, nil
}
