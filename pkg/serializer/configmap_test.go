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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestParseConfigMapURI(t *testing.T) {
	tests := []struct {
		name          string
		uri           string
		wantNamespace string
		wantName      string
		wantErr       bool
	}{
		{name: "valid URI", uri: "cm://monitoring/crashes", wantNamespace: "monitoring", wantName: "crashes"},
		{name: "valid URI with spaces", uri: "cm://monitoring / crashes ", wantNamespace: "monitoring", wantName: "crashes"},
		{name: "missing scheme", uri: "monitoring/crashes", wantErr: true},
		{name: "wrong scheme", uri: "http://monitoring/crashes", wantErr: true},
		{name: "missing name", uri: "cm://monitoring/", wantErr: true},
		{name: "missing namespace", uri: "cm:///crashes", wantErr: true},
		{name: "missing separator", uri: "cm://monitoring", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, name, err := ParseConfigMapURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseConfigMapURI() error = %v, wantErr %v", err, tt.wantErr)
			}
			if ns != tt.wantNamespace || name != tt.wantName {
				t.Errorf("ParseConfigMapURI() = %q/%q, want %q/%q", ns, name, tt.wantNamespace, tt.wantName)
			}
		})
	}
}

func TestConfigMapWriterCreateThenMerge(t *testing.T) {
	cs := fake.NewClientset()
	ctx := context.Background()
	fixed := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

	first := NewConfigMapWriter("monitoring", "crashes", FormatJSON, WithClient(cs), WithDataKey("a.json"))
	first.now = func() time.Time { return fixed }
	require.NoError(t, first.Serialize(ctx, map[string]string{"message": "one"}))

	second := NewConfigMapWriter("monitoring", "crashes", FormatJSON, WithClient(cs), WithDataKey("b.json"))
	require.NoError(t, second.Serialize(ctx, map[string]string{"message": "two"}))

	cm, err := cs.CoreV1().ConfigMaps("monitoring").Get(ctx, "crashes", metav1.GetOptions{})
	require.NoError(t, err)

	assert.JSONEq(t, `{"message":"one"}`, cm.Data["a.json"])
	assert.JSONEq(t, `{"message":"two"}`, cm.Data["b.json"])
	assert.Equal(t, "json", cm.Data[ConfigMapFormatKey])
	assert.NotEmpty(t, cm.Data[ConfigMapTimestampKey])
	assert.Equal(t, "crashcap", cm.Labels["app.kubernetes.io/name"])
	assert.NoError(t, second.Close())
}

func TestConfigMapWriterDefaultKey(t *testing.T) {
	cs := fake.NewClientset()
	w := NewConfigMapWriter("default", "snap", FormatYAML, WithClient(cs))
	require.NoError(t, w.Serialize(context.Background(), map[string]int{"a": 1}))

	cm, err := cs.CoreV1().ConfigMaps("default").Get(context.Background(), "snap", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", cm.Data["snapshot.yaml"])
	assert.Equal(t, "2025-03-04T10:00:00Z", mustTimestamp(t, fixedWriter(cs)))
}

func fixedWriter(cs *fake.Clientset) *ConfigMapWriter {
	w := NewConfigMapWriter("default", "fixed", FormatJSON, WithClient(cs))
	w.now = func() time.Time { return time.Date(2025, 3, 4, 11, 0, 0, 0, time.FixedZone("CET", 3600)) }
	return w
}

func mustTimestamp(t *testing.T, w *ConfigMapWriter) string {
	t.Helper()
	require.NoError(t, w.Serialize(context.Background(), map[string]int{}))
	cm, err := w.client.CoreV1().ConfigMaps(w.namespace).Get(context.Background(), w.name, metav1.GetOptions{})
	require.NoError(t, err)
	return cm.Data[ConfigMapTimestampKey]
}
