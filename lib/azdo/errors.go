// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package azdo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/stackhand/stackhand/lib/netutil"
)

// APIError represents a non-2xx response from the Azure DevOps REST
// API. The service returns structured JSON error bodies with a message
// and a dotted type key identifying the failure class.
type APIError struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Message is the error description from Azure DevOps.
	Message string

	// TypeKey classifies the error, e.g.
	// "GitPullRequestNotFoundException".
	TypeKey string
}

func (err *APIError) Error() string {
	if err.TypeKey != "" {
		return fmt.Sprintf("azdo: HTTP %d (%s): %s", err.StatusCode, err.TypeKey, err.Message)
	}
	return fmt.Sprintf("azdo: HTTP %d: %s", err.StatusCode, err.Message)
}

// IsNotFound reports whether err is a 404 response or a
// not-found-typed exception (Azure DevOps reports missing pull
// requests as 404s with a typed body).
func IsNotFound(err error) bool {
	var apiError *APIError
	if !errors.As(err, &apiError) {
		return false
	}
	return apiError.StatusCode == 404 ||
		strings.Contains(apiError.TypeKey, "NotFound")
}

// IsUnauthorized reports whether err is an authentication or
// authorization failure. Azure DevOps returns 401 for bad PATs and 403
// for valid PATs lacking the required scope.
func IsUnauthorized(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) &&
		(apiError.StatusCode == 401 || apiError.StatusCode == 403)
}

// errorBody is the JSON shape of Azure DevOps error responses.
type errorBody struct {
	Message string `json:"message"`
	TypeKey string `json:"typeKey"`
}

// parseAPIError builds an *APIError from an error response body.
// Unparseable bodies (HTML sign-in pages on auth failures, proxies)
// fall back to the raw text.
func parseAPIError(statusCode int, body io.Reader) *APIError {
	raw := netutil.ErrorBody(body)

	var parsed errorBody
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil && parsed.Message != "" {
		return &APIError{
			StatusCode: statusCode,
			Message:    parsed.Message,
			TypeKey:    parsed.TypeKey,
		}
	}

	message := strings.TrimSpace(raw)
	if len(message) > 200 {
		message = message[:200] + "…"
	}
	if message == "" {
		message = "(empty response body)"
	}
	return &APIError{StatusCode: statusCode, Message: message}
}
