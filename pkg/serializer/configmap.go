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
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/crashcap/pkg/defaults"
	"github.com/NVIDIA/crashcap/pkg/k8s/client"
	"github.com/NVIDIA/crashcap/pkg/version"
)

// ConfigMapURIScheme is the URI scheme for ConfigMap output (cm://namespace/name).
const ConfigMapURIScheme = "cm://"

// Keys written next to the payload in every ConfigMap.
const (
	ConfigMapFormatKey    = "format"
	ConfigMapTimestampKey = "timestamp"
)

// ConfigMapOption configures a ConfigMapWriter.
type ConfigMapOption func(*ConfigMapWriter)

// WithClient uses the given Kubernetes client instead of discovering one.
func WithClient(c client.Interface) ConfigMapOption {
	return func(w *ConfigMapWriter) {
		w.client = c
	}
}

// WithKubeconfig sets the kubeconfig path used when no client is supplied.
func WithKubeconfig(path string) ConfigMapOption {
	return func(w *ConfigMapWriter) {
		w.kubeconfig = path
	}
}

// WithDataKey sets the data key the payload is stored under.
// The default is "snapshot.<ext>".
func WithDataKey(key string) ConfigMapOption {
	return func(w *ConfigMapWriter) {
		w.dataKey = key
	}
}

// ConfigMapWriter writes serialized data to a Kubernetes ConfigMap.
// The ConfigMap is created if it doesn't exist; otherwise the payload key is
// merged into the existing data so several captures can share one ConfigMap.
type ConfigMapWriter struct {
	namespace  string
	name       string
	format     Format
	dataKey    string
	kubeconfig string
	client     client.Interface
	now        func() time.Time
}

// NewConfigMapWriter creates a new ConfigMapWriter that writes to the specified
// namespace and ConfigMap name in the given format.
func NewConfigMapWriter(namespace, name string, format Format, opts ...ConfigMapOption) *ConfigMapWriter {
	w := &ConfigMapWriter{
		namespace: namespace,
		name:      name,
		format:    normalize(format),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.dataKey == "" {
		w.dataKey = "snapshot." + w.format.Extension()
	}
	return w
}

func (w *ConfigMapWriter) kubeClient() (client.Interface, error) {
	if w.client != nil {
		return w.client, nil
	}
	var (
		c   client.Interface
		err error
	)
	if w.kubeconfig != "" {
		c, _, err = client.GetKubeClientWithConfig(w.kubeconfig)
	} else {
		c, _, err = client.GetKubeClient()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kubernetes client: %w", err)
	}
	w.client = c
	return c, nil
}

// Serialize writes data to the ConfigMap under the writer's data key, along
// with the format and an RFC 3339 timestamp.
func (w *ConfigMapWriter) Serialize(ctx context.Context, data any) error {
	writeCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	c, err := w.kubeClient()
	if err != nil {
		return err
	}

	content, err := Marshal(w.format, data)
	if err != nil {
		return fmt.Errorf("failed to serialize data: %w", err)
	}

	payload := map[string]string{
		w.dataKey:             string(content),
		ConfigMapFormatKey:    string(w.format),
		ConfigMapTimestampKey: w.now().UTC().Format(time.RFC3339),
	}

	slog.Debug("writing configmap",
		"namespace", w.namespace,
		"name", w.name,
		"key", w.dataKey,
		"format", w.format)

	cms := c.CoreV1().ConfigMaps(w.namespace)
	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      w.name,
			Namespace: w.namespace,
			Labels: map[string]string{
				"app.kubernetes.io/name":      "crashcap",
				"app.kubernetes.io/component": "capture",
				"app.kubernetes.io/version":   version.Library,
			},
		},
		Data: payload,
	}

	_, err = cms.Create(writeCtx, cm, metav1.CreateOptions{FieldManager: "crashcap"})
	if err == nil {
		return nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}

	existing, err := cms.Get(writeCtx, w.name, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}
	if existing.Data == nil {
		existing.Data = map[string]string{}
	}
	maps.Copy(existing.Data, payload)
	if _, err := cms.Update(writeCtx, existing, metav1.UpdateOptions{FieldManager: "crashcap"}); err != nil {
		return fmt.Errorf("failed to update ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}
	return nil
}

// Close is a no-op; it exists to satisfy Closer.
func (w *ConfigMapWriter) Close() error {
	return nil
}

// ParseConfigMapURI parses a ConfigMap URI in the format cm://namespace/name
// and returns the namespace and name components.
func ParseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", fmt.Errorf("invalid ConfigMap URI: must start with %s", ConfigMapURIScheme)
	}

	path := strings.TrimPrefix(uri, ConfigMapURIScheme)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid ConfigMap URI format: expected %snamespace/name, got %s", ConfigMapURIScheme, uri)
	}

	namespace = strings.TrimSpace(parts[0])
	name = strings.TrimSpace(parts[1])

	if namespace == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: namespace cannot be empty")
	}
	if name == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: name cannot be empty")
	}

	return namespace, name, nil
}
