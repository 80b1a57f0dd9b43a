// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/go-resty/resty/v2"
)

const (
	collectionPath = "/{collection}"
	recordPath     = "/{collection}/{id}"
	pingPath       = "/ping"
)

type httpRemoteAPI struct {
	client *utils.HTTPClient
	tokens TokenSource
	hasher *utils.Hasher
	now    func() time.Time

	logger *logger.Logger
}

// NewHTTPRemoteAPI constructs the HTTP/REST implementation of [RemoteAPI].
// It normalises the base URL from adapterCfg.HTTPAddress and applies
// adapterCfg.RequestTimeout to every call. Request bodies are signed with
// appCfg.HashKey when it is set. tokens may be nil for an unauthenticated
// server.
func NewHTTPRemoteAPI(adapterCfg config.ClientAdapter, appCfg config.ClientApp, tokens TokenSource, logger *logger.Logger) (RemoteAPI, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	client := utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout)

	return &httpRemoteAPI{
		client: client,
		tokens: tokens,
		hasher: utils.NewHasher(appCfg.HashKey),
		now:    time.Now,
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpRemoteAPI) Create(ctx context.Context, rec models.RemoteRecord) error {
	return h.send(ctx, http.MethodPost, collectionPath, rec)
}

func (h *httpRemoteAPI) Update(ctx context.Context, rec models.RemoteRecord) error {
	return h.send(ctx, http.MethodPut, recordPath, rec)
}

// Delete sends the record body too so that the server can check ownership.
func (h *httpRemoteAPI) Delete(ctx context.Context, rec models.RemoteRecord) error {
	return h.send(ctx, http.MethodDelete, recordPath, rec)
}

// Ping sends HEAD /ping. Only a transport failure means unreachable.
func (h *httpRemoteAPI) Ping(ctx context.Context) error {
	if _, err := h.client.R().SetContext(ctx).Head(pingPath); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrTransient, err)
	}
	return nil
}

func (h *httpRemoteAPI) send(ctx context.Context, method, path string, rec models.RemoteRecord) error {
	log := logger.FromContext(ctx)

	req, err := h.authedRequest(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode %s record: %w", ErrPermanentRejection, rec.Collection, err)
	}

	req.
		SetHeader("Content-Type", "application/json").
		SetPathParams(map[string]string{
			"collection": rec.Collection.String(),
			"id":         rec.ID,
		}).
		SetBody(body)
	if h.hasher.Enabled() {
		req.SetHeader(utils.HashHeader, h.hasher.SumHex(body))
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		log.Debug().Err(err).
			Str("func", "httpRemoteAPI.send").
			Str("method", method).
			Str("collection", rec.Collection.String()).
			Str("id", rec.ID).
			Msg("remote call failed")
		return fmt.Errorf("%w: %s %s: %w", ErrTransient, method, rec.Collection, err)
	}

	if err = mapHTTPError(method, resp); err != nil {
		log.Debug().Err(err).
			Str("func", "httpRemoteAPI.send").
			Str("method", method).
			Str("collection", rec.Collection.String()).
			Str("id", rec.ID).
			Int("status", resp.StatusCode()).
			Msg("remote call rejected")
		return err
	}

	return nil
}

// authedRequest attaches the bearer token. A token already past its "exp"
// short-circuits to [ErrAuthExpired] without a round trip. Tokens that are
// not JWTs are passed through and left to the server to judge.
func (h *httpRemoteAPI) authedRequest(ctx context.Context) (*resty.Request, error) {
	req := h.client.R().SetContext(ctx)
	if h.tokens == nil {
		return req, nil
	}

	token, err := h.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthExpired, err)
	}
	if token == "" {
		return req, nil
	}

	if expired, err := utils.TokenExpired(token, h.now()); err == nil && expired {
		return nil, ErrAuthExpired
	}

	return req.SetAuthToken(token), nil
}
