// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serializer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/crashcap/pkg/defaults"
	"github.com/NVIDIA/crashcap/pkg/version"
)

// RequestIDHeader carries a unique id for every delivery attempt.
const RequestIDHeader = "X-Request-Id"

// maxErrorBody bounds how much of a failed response body ends up in the error.
const maxErrorBody = 512

var (
	HTTPWriterDefaultTimeout               = defaults.HTTPClientTimeout
	HTTPWriterDefaultKeepAlive             = defaults.HTTPKeepAlive
	HTTPWriterDefaultConnectTimeout        = defaults.HTTPConnectTimeout
	HTTPWriterDefaultTLSHandshakeTimeout   = defaults.HTTPTLSHandshakeTimeout
	HTTPWriterDefaultResponseHeaderTimeout = defaults.HTTPResponseHeaderTimeout
	HTTPWriterDefaultIdleConnTimeout       = defaults.HTTPIdleConnTimeout
)

// DefaultUserAgent identifies crashcap to remote collectors.
func DefaultUserAgent() string {
	return "crashcap/" + version.Library
}

// HTTPWriterOption defines a configuration option for HTTPWriter.
type HTTPWriterOption func(*HTTPWriter)

// HTTPWriter posts serialized data to a remote collector.
type HTTPWriter struct {
	URL                string
	Format             Format
	UserAgent          string
	Headers            map[string]string
	TotalTimeout       time.Duration
	InsecureSkipVerify bool
	Client             *http.Client
}

func WithHTTPFormat(format Format) HTTPWriterOption {
	return func(w *HTTPWriter) {
		w.Format = normalize(format)
	}
}

func WithUserAgent(userAgent string) HTTPWriterOption {
	return func(w *HTTPWriter) {
		w.UserAgent = userAgent
	}
}

func WithHeader(key, value string) HTTPWriterOption {
	return func(w *HTTPWriter) {
		w.Headers[key] = value
	}
}

func WithTotalTimeout(timeout time.Duration) HTTPWriterOption {
	return func(w *HTTPWriter) {
		w.TotalTimeout = timeout
	}
}

func WithInsecureSkipVerify(skip bool) HTTPWriterOption {
	return func(w *HTTPWriter) {
		w.InsecureSkipVerify = skip
	}
}

// WithHTTPClient replaces the default client. Transport options are not
// applied to a caller supplied client.
func WithHTTPClient(client *http.Client) HTTPWriterOption {
	return func(w *HTTPWriter) {
		w.Client = client
	}
}

// NewHTTPWriter creates an HTTPWriter for url with the specified options.
func NewHTTPWriter(url string, options ...HTTPWriterOption) *HTTPWriter {
	w := &HTTPWriter{
		URL:          url,
		Format:       FormatJSON,
		UserAgent:    DefaultUserAgent(),
		Headers:      map[string]string{},
		TotalTimeout: HTTPWriterDefaultTimeout,
	}
	for _, opt := range options {
		opt(w)
	}
	if w.Client == nil {
		w.Client = &http.Client{
			Timeout:   w.TotalTimeout,
			Transport: newDefaultHTTPTransport(w.InsecureSkipVerify),
		}
	}
	return w
}

func newDefaultHTTPTransport(insecure bool) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   HTTPWriterDefaultConnectTimeout,
			KeepAlive: HTTPWriterDefaultKeepAlive,
		}).DialContext,
		TLSHandshakeTimeout:   HTTPWriterDefaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: HTTPWriterDefaultResponseHeaderTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       HTTPWriterDefaultIdleConnTimeout,
		ForceAttemptHTTP2:     true,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: insecure, //nolint:gosec // opt-in for lab collectors
		},
	}
}

// Serialize posts data to the configured URL. Any non-2xx response is an error.
func (w *HTTPWriter) Serialize(ctx context.Context, data any) error {
	if w.URL == "" {
		return fmt.Errorf("url is empty")
	}
	if w.Client == nil {
		return fmt.Errorf("http client is nil")
	}

	body, err := Marshal(w.Format, data)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request for url %s: %w", w.URL, err)
	}
	req.Header.Set("Content-Type", w.Format.ContentType())
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if w.UserAgent != "" {
		req.Header.Set("User-Agent", w.UserAgent)
	}
	for k, v := range w.Headers {
		req.Header.Set(k, v)
	}

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed for url %s: %w", w.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("collector rejected capture: status %s: %s",
			resp.Status, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
