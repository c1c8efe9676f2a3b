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
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPWriterSerialize(t *testing.T) {
	var (
		gotBody    string
		gotHeaders http.Header
		gotMethod  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotHeaders = r.Header.Clone()
		gotMethod = r.Method
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	w := NewHTTPWriter(srv.URL, WithHeader("Authorization", "Bearer t"))
	require.NoError(t, w.Serialize(context.Background(), map[string]string{"message": "boom"}))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.JSONEq(t, `{"message":"boom"}`, gotBody)
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, DefaultUserAgent(), gotHeaders.Get("User-Agent"))
	assert.Equal(t, "Bearer t", gotHeaders.Get("Authorization"))
	_, err := uuid.Parse(gotHeaders.Get(RequestIDHeader))
	assert.NoError(t, err, "request id must be a uuid")
}

func TestHTTPWriterYAML(t *testing.T) {
	var ct string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	w := NewHTTPWriter(srv.URL, WithHTTPFormat(FormatYAML), WithUserAgent("test"))
	require.NoError(t, w.Serialize(context.Background(), map[string]int{"a": 1}))
	assert.Equal(t, "application/yaml", ct)
}

func TestHTTPWriterErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewHTTPWriter(srv.URL).Serialize(context.Background(), map[string]int{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")

	assert.Error(t, NewHTTPWriter("").Serialize(context.Background(), nil))

	nilClient := NewHTTPWriter(srv.URL)
	nilClient.Client = nil
	assert.Error(t, nilClient.Serialize(context.Background(), nil))
}

func TestHTTPWriterContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewHTTPWriter(srv.URL).Serialize(ctx, map[string]int{})
	assert.Error(t, err)
}

func TestNewHTTPWriterClientOption(t *testing.T) {
	c := &http.Client{Timeout: time.Second}
	w := NewHTTPWriter("http://example.invalid", WithHTTPClient(c), WithTotalTimeout(time.Minute), WithInsecureSkipVerify(true))
	assert.Same(t, c, w.Client)
	assert.Equal(t, time.Minute, w.TotalTimeout)
	assert.True(t, w.InsecureSkipVerify)
}
