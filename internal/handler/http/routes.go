// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(h.withTraceID, h.withLogging, middleware.Recoverer, withGZip)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/ping", h.ping)
		r.Head("/ping", h.ping)
		r.Get("/version", h.getServerVersion)
	})

	// record api
	router.Group(func(r chi.Router) {
		r.Use(h.auth, h.verifyHash)

		r.Post("/{collection}", h.createRecord)
		r.Put("/{collection}/{id}", h.upsertRecord)
		r.Delete("/{collection}/{id}", h.deleteRecord)
		r.Get("/{collection}/{id}", h.getRecord)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
