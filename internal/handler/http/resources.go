// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
	"github.com/MKhiriev/go-fin-keeper/models"
)

// createRecord handles POST /{collection}. A record delivered before is
// answered with 200 instead of 201 so the client treats the retry as done.
func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	rec, err := decodeRecord(r)
	if err != nil {
		h.writeError(w, r, "*Handler.createRecord", err)
		return
	}

	created, err := h.services.ResourceService.Create(r.Context(), rec)
	if err != nil {
		h.writeError(w, r, "*Handler.createRecord", err)
		return
	}

	if !created {
		log.Debug().Str("func", "*Handler.createRecord").Str("id", rec.ID).Msg("duplicate create acknowledged")
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// upsertRecord handles PUT /{collection}/{id}.
func (h *Handler) upsertRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := decodeRecord(r)
	if err != nil {
		h.writeError(w, r, "*Handler.upsertRecord", err)
		return
	}
	if rec.ID, err = pathID(r, rec.ID); err != nil {
		h.writeError(w, r, "*Handler.upsertRecord", err)
		return
	}

	if err = h.services.ResourceService.Upsert(r.Context(), rec); err != nil {
		h.writeError(w, r, "*Handler.upsertRecord", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// deleteRecord handles DELETE /{collection}/{id}. Deleting a missing record
// succeeds. The owner comes from the token, the body or the userId query
// parameter, in that order.
func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	collection, err := pathCollection(r)
	if err != nil {
		h.writeError(w, r, "*Handler.deleteRecord", err)
		return
	}

	var body models.RemoteRecord
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		if err = json.Unmarshal(raw, &body); err != nil {
			h.writeError(w, r, "*Handler.deleteRecord", fmt.Errorf("%w: %w", ErrInvalidBody, err))
			return
		}
	}

	id, err := pathID(r, body.ID)
	if err != nil {
		h.writeError(w, r, "*Handler.deleteRecord", err)
		return
	}
	userID, err := ownerOf(r, body.UserID)
	if err != nil {
		h.writeError(w, r, "*Handler.deleteRecord", err)
		return
	}

	if err = h.services.ResourceService.Delete(r.Context(), collection, id, userID); err != nil {
		h.writeError(w, r, "*Handler.deleteRecord", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getRecord handles GET /{collection}/{id}.
func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	collection, err := pathCollection(r)
	if err != nil {
		h.writeError(w, r, "*Handler.getRecord", err)
		return
	}
	userID, err := ownerOf(r, "")
	if err != nil {
		h.writeError(w, r, "*Handler.getRecord", err)
		return
	}

	rec, err := h.services.ResourceService.Get(r.Context(), collection, chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeError(w, r, "*Handler.getRecord", err)
		return
	}

	utils.WriteJSON(w, rec, http.StatusOK)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, fn string, err error) {
	status := statusFromError(err)

	event := logger.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.FromRequest(r).Error()
	}
	event.Err(err).Str("func", fn).Int("status", status).Msg("request failed")

	http.Error(w, http.StatusText(status), status)
}

// decodeRecord reads the record body and binds it to the {collection} path
// segment.
func decodeRecord(r *http.Request) (models.RemoteRecord, error) {
	collection, err := pathCollection(r)
	if err != nil {
		return models.RemoteRecord{}, err
	}

	var rec models.RemoteRecord
	if err = json.NewDecoder(r.Body).Decode(&rec); err != nil {
		return models.RemoteRecord{}, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	rec.Collection = collection

	return rec, nil
}

func pathCollection(r *http.Request) (models.Collection, error) {
	collection := models.Collection(chi.URLParam(r, "collection"))
	if !collection.IsEntityCollection() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return collection, nil
}

// pathID returns the {id} path segment. A body id, when present, must agree
// with it.
func pathID(r *http.Request, bodyID string) (string, error) {
	id := chi.URLParam(r, "id")
	if bodyID != "" && bodyID != id {
		return "", fmt.Errorf("%w: %q != %q", ErrIDMismatch, bodyID, id)
	}
	return id, nil
}

func ownerOf(r *http.Request, bodyUserID string) (string, error) {
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		return userID, nil
	}
	if bodyUserID != "" {
		return bodyUserID, nil
	}
	if userID := r.URL.Query().Get("userId"); userID != "" {
		return userID, nil
	}
	return "", ErrNoOwner
}
