// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// mapHTTPError turns a response status into one of the outcome classes.
// A 404 answering a DELETE means the record is already gone and counts as
// success.
func mapHTTPError(method string, resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(code)
	}

	switch {
	case code == http.StatusNotFound && method == http.MethodDelete:
		return nil
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrAuthExpired, body)
	case isRetryableStatus(code):
		return fmt.Errorf("%w: http %d: %s", ErrTransient, code, body)
	default:
		return fmt.Errorf("%w: http %d: %s", ErrPermanentRejection, code, body)
	}
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return true
	}
	return code >= http.StatusInternalServerError
}
