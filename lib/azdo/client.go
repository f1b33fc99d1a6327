// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package azdo is a typed Azure DevOps REST API client covering the
// surface stackhand needs: pull request lookups and comment thread
// creation. Authentication is a personal access token sent as HTTP
// Basic credentials; structured API errors carry the status code and
// the service's message.
package azdo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/stackhand/stackhand/lib/netutil"
	"github.com/stackhand/stackhand/lib/secret"
)

// apiVersion is the Azure DevOps REST API version appended to every
// request. Pinned so behavior stays consistent as the service evolves.
const apiVersion = "7.1"

// Config holds configuration for creating a Client.
type Config struct {
	// OrganizationURL is the organization root, e.g.
	// "https://dev.azure.com/contoso". Must use HTTPS.
	OrganizationURL string

	// PAT is the personal access token. The client reads it once at
	// construction; the caller keeps ownership and closes it.
	PAT *secret.Buffer

	// HTTPClient is used for all HTTP requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Logger is used for structured logging. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Client is a typed Azure DevOps REST API client.
type Client struct {
	organizationURL string
	httpClient      *http.Client
	authorization   string
	logger          *slog.Logger
}

// NewClient creates an Azure DevOps API client from the given
// configuration. Returns an error if the configuration is invalid
// (missing PAT, non-HTTPS URL).
func NewClient(config Config) (*Client, error) {
	organizationURL := strings.TrimRight(config.OrganizationURL, "/")
	if !strings.HasPrefix(organizationURL, "https://") {
		return nil, fmt.Errorf("azdo: API client requires HTTPS (got %q)", config.OrganizationURL)
	}

	if config.PAT == nil || config.PAT.Len() == 0 {
		return nil, fmt.Errorf("azdo: no personal access token configured")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		organizationURL: organizationURL,
		httpClient:      httpClient,
		authorization:   basicAuthorization(config.PAT),
		logger:          logger,
	}, nil
}

// basicAuthorization builds the Authorization header for PAT auth.
// Azure DevOps uses HTTP Basic with an empty username and the PAT as
// password: base64(":" + pat).
func basicAuthorization(pat *secret.Buffer) string {
	raw := append([]byte(":"), pat.Bytes()...)
	encoded := base64.StdEncoding.EncodeToString(raw)
	secret.Zero(raw)
	return "Basic " + encoded
}

// do executes an authenticated request and decodes the JSON response
// into result (nil result discards the body). The path is relative to
// the organization URL and must already include the project segment;
// the api-version query parameter is appended here. On non-2xx
// responses, returns an *APIError.
func (client *Client) do(ctx context.Context, method, path string, requestBody, result any) error {
	url := client.organizationURL + path
	if strings.Contains(path, "?") {
		url += "&api-version=" + apiVersion
	} else {
		url += "?api-version=" + apiVersion
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("azdo: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("azdo: creating request: %w", err)
	}

	request.Header.Set("Authorization", client.authorization)
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("azdo: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return parseAPIError(response.StatusCode, response.Body)
	}

	if result == nil {
		return nil
	}
	if err := netutil.DecodeResponse(response.Body, result); err != nil {
		return fmt.Errorf("azdo: decoding response: %w", err)
	}
	return nil
}

// get executes a GET request and decodes the JSON response into
// result.
func (client *Client) get(ctx context.Context, path string, result any) error {
	return client.do(ctx, http.MethodGet, path, nil, result)
}

// post executes a POST request and decodes the JSON response into
// result.
func (client *Client) post(ctx context.Context, path string, requestBody, result any) error {
	return client.do(ctx, http.MethodPost, path, requestBody, result)
}
