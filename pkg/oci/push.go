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

package oci

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	"github.com/NVIDIA/crashcap/pkg/defaults"
	apperrors "github.com/NVIDIA/crashcap/pkg/errors"
)

// ArtifactType is the manifest artifact type of pushed captures.
const ArtifactType = "application/vnd.nvidia.crashcap.capture.v1"

// MediaTypeCapture is the layer media type of a JSON capture.
const MediaTypeCapture = "application/vnd.nvidia.crashcap.capture.v1+json"

// PushOptions configures PushBytes.
type PushOptions struct {
	// Title names the layer (org.opencontainers.image.title).
	Title string
	// MediaType of the layer, MediaTypeCapture when empty.
	MediaType string
	// Annotations are added to the manifest.
	Annotations map[string]string
	// PlainHTTP uses HTTP instead of HTTPS for the registry connection.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
	// Target overrides the remote repository, mainly for tests.
	Target oras.Target
}

// PushResult contains the result of a successful push.
type PushResult struct {
	// Digest of the pushed manifest.
	Digest string
	// Reference is registry/repository:tag.
	Reference string
}

// PushBytes packs data as a single-layer OCI artifact and pushes it to ref.
// The reference must carry a tag.
func PushBytes(ctx context.Context, ref *Reference, data []byte, opts PushOptions) (*PushResult, error) {
	if ref == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "OCI reference is required")
	}
	if ref.Tag == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "tag is required to push OCI artifact")
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.OCIPushTimeout)
	defer cancel()

	mediaType := opts.MediaType
	if mediaType == "" {
		mediaType = MediaTypeCapture
	}

	store := memory.New()
	layer, err := oras.PushBytes(ctx, store, mediaType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to stage layer: %w", err)
	}
	if opts.Title != "" {
		layer.Annotations = map[string]string{ociv1.AnnotationTitle: opts.Title}
	}

	manifest, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, ArtifactType,
		oras.PackManifestOptions{
			Layers:              []ociv1.Descriptor{layer},
			ManifestAnnotations: opts.Annotations,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to pack manifest: %w", err)
	}
	if err := store.Tag(ctx, manifest, ref.Tag); err != nil {
		return nil, fmt.Errorf("failed to tag manifest in local store: %w", err)
	}

	target := opts.Target
	if target == nil {
		repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", stripProtocol(ref.Registry), ref.Repository))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize remote repository: %w", err)
		}
		repo.PlainHTTP = opts.PlainHTTP
		repo.Client = createAuthClient(opts.PlainHTTP, opts.InsecureTLS)
		target = repo
	}

	desc, err := oras.Copy(ctx, store, ref.Tag, target, ref.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to push artifact to registry: %w", err)
	}

	slog.Debug("pushed OCI artifact",
		"reference", ref.ImageReference(),
		"digest", desc.Digest.String(),
		"size", len(data))

	return &PushResult{
		Digest:    desc.Digest.String(),
		Reference: ref.ImageReference(),
	}, nil
}

// stripProtocol removes http:// or https:// prefix from a registry URL.
func stripProtocol(registry string) string {
	registry = strings.TrimPrefix(registry, "https://")
	registry = strings.TrimPrefix(registry, "http://")
	return registry
}

// createAuthClient creates an HTTP client with optional TLS configuration
// and Docker credential support.
func createAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		slog.Debug("docker credential store unavailable", slog.String("error", err.Error()))
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
		}
	}

	client := &auth.Client{
		Client: &http.Client{Transport: transport},
		Cache:  auth.NewCache(),
	}
	if credStore != nil {
		client.Credential = credentials.Credential(credStore)
	}
	return client
}
