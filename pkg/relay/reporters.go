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

package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"

	"github.com/NVIDIA/crashcap/pkg/capture"
	"github.com/NVIDIA/crashcap/pkg/errors"
	"github.com/NVIDIA/crashcap/pkg/header"
	"github.com/NVIDIA/crashcap/pkg/identity"
	"github.com/NVIDIA/crashcap/pkg/k8s/client"
	"github.com/NVIDIA/crashcap/pkg/oci"
	"github.com/NVIDIA/crashcap/pkg/serializer"
	"github.com/NVIDIA/crashcap/pkg/snapshotter"
	"github.com/NVIDIA/crashcap/pkg/version"
)

// JournalURIScheme selects the systemd journal reporter.
const JournalURIScheme = "journal://"

// Envelope is the document posted to HTTP collectors.
type Envelope struct {
	header.Header `yaml:",inline"`

	ID       int64                 `json:"id"`
	Filename string                `json:"filename"`
	Message  string                `json:"message"`
	Snapshot *snapshotter.Snapshot `json:"snapshot"`
}

// NewEnvelope wraps the cached snapshot of rec. The header timestamp is the
// fault time when the snapshot recorded one.
func NewEnvelope(rec *capture.Record) Envelope {
	snap := rec.Snapshot()
	var opts []header.Option
	if ms, ok := snap.Exception["ms"].(int64); ok {
		opts = append(opts, header.WithTimestamp(time.UnixMilli(ms)))
	}
	return Envelope{
		Header:   header.New(header.KindCapture, version.Library, opts...),
		ID:       rec.ID,
		Filename: rec.Filename,
		Message:  rec.Message,
		Snapshot: snap,
	}
}

// Options tune the reporters built by NewReporter.
type Options struct {
	// Kubeconfig for cm:// targets. Empty runs discovery.
	Kubeconfig string
	// KubeClient replaces the discovered client for cm:// targets.
	KubeClient client.Interface
	// HTTPClient replaces the default client for http(s):// targets.
	HTTPClient *http.Client
	// PlainHTTP talks to the OCI registry without TLS.
	PlainHTTP bool
	// InsecureTLS skips certificate verification for HTTP and OCI targets.
	InsecureTLS bool
	// OCITarget replaces the remote repository for oci:// targets.
	OCITarget oras.Target
}

// NewReporter builds the reporter for uri:
//
//	""                       no reporter
//	http://... https://...   POST an Envelope
//	cm://namespace/name      store <filename>.json in a ConfigMap
//	oci://registry/repo[:t]  push a single-layer artifact
//	journal://               write to the systemd journal
func NewReporter(uri string, opts Options) (Reporter, error) {
	uri = strings.TrimSpace(uri)
	switch {
	case uri == "":
		return nil, nil
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		wopts := []serializer.HTTPWriterOption{serializer.WithInsecureSkipVerify(opts.InsecureTLS)}
		if opts.HTTPClient != nil {
			wopts = append(wopts, serializer.WithHTTPClient(opts.HTTPClient))
		}
		return &HTTPReporter{writer: serializer.NewHTTPWriter(uri, wopts...)}, nil
	case strings.HasPrefix(uri, serializer.ConfigMapURIScheme):
		ns, name, err := serializer.ParseConfigMapURI(uri)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid relay URI", err)
		}
		return &ConfigMapReporter{Namespace: ns, ConfigMap: name, Kubeconfig: opts.Kubeconfig, Client: opts.KubeClient}, nil
	case strings.HasPrefix(uri, oci.URIScheme):
		ref, err := oci.ParseReference(uri)
		if err != nil {
			return nil, err
		}
		return &OCIReporter{Ref: ref, PlainHTTP: opts.PlainHTTP, InsecureTLS: opts.InsecureTLS, Target: opts.OCITarget}, nil
	case strings.HasPrefix(uri, JournalURIScheme):
		return NewJournalReporter(), nil
	default:
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"unsupported relay URI", map[string]any{"uri": uri})
	}
}

// HTTPReporter posts an Envelope as JSON.
type HTTPReporter struct {
	writer *serializer.HTTPWriter
}

func (r *HTTPReporter) Name() string { return "http" }

func (r *HTTPReporter) Report(ctx context.Context, rec *capture.Record) error {
	return r.writer.Serialize(ctx, NewEnvelope(rec))
}

// ConfigMapReporter stores the snapshot under <filename>.json in a ConfigMap.
type ConfigMapReporter struct {
	Namespace  string
	ConfigMap  string
	Kubeconfig string
	Client     client.Interface
}

func (r *ConfigMapReporter) Name() string { return "configmap" }

func (r *ConfigMapReporter) Report(ctx context.Context, rec *capture.Record) error {
	opts := []serializer.ConfigMapOption{
		serializer.WithDataKey(rec.Filename + identity.RecordExt),
		serializer.WithKubeconfig(r.Kubeconfig),
	}
	if r.Client != nil {
		opts = append(opts, serializer.WithClient(r.Client))
	}
	w := serializer.NewConfigMapWriter(r.Namespace, r.ConfigMap, serializer.FormatJSON, opts...)
	return w.Serialize(ctx, rec.Snapshot())
}

// OCIReporter pushes the snapshot as an OCI artifact. Without a tag in the
// reference each capture is tagged with its filename.
type OCIReporter struct {
	Ref         *oci.Reference
	PlainHTTP   bool
	InsecureTLS bool
	Target      oras.Target
}

func (r *OCIReporter) Name() string { return "oci" }

func (r *OCIReporter) Report(ctx context.Context, rec *capture.Record) error {
	data, err := serializer.Marshal(serializer.FormatJSON, rec.Snapshot())
	if err != nil {
		return err
	}

	ref := r.Ref
	if ref.Tag == "" {
		ref = ref.WithTag(oci.SanitizeTag(rec.Filename))
	}

	_, err = oci.PushBytes(ctx, ref, data, oci.PushOptions{
		Title: rec.Filename + identity.RecordExt,
		Annotations: map[string]string{
			ociv1.AnnotationTitle:       rec.Filename,
			ociv1.AnnotationDescription: rec.Message,
			"io.crashcap.id":            strconv.FormatInt(rec.ID, 10),
		},
		PlainHTTP:   r.PlainHTTP,
		InsecureTLS: r.InsecureTLS,
		Target:      r.Target,
	})
	return err
}

// JournalReporter writes the capture to the systemd journal at critical
// priority, with the snapshot in the CRASHCAP_SNAPSHOT field.
type JournalReporter struct {
	enabled func() bool
	send    func(message string, priority journal.Priority, vars map[string]string) error
}

// NewJournalReporter returns a reporter bound to the local journal socket.
func NewJournalReporter() *JournalReporter {
	return &JournalReporter{enabled: journal.Enabled, send: journal.Send}
}

func (r *JournalReporter) Name() string { return "journal" }

func (r *JournalReporter) Report(_ context.Context, rec *capture.Record) error {
	if !r.enabled() {
		return errors.New(errors.ErrCodeUnavailable, "systemd journal is not available")
	}
	snap, err := json.Marshal(rec.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return r.send(rec.Message, journal.PriCrit, map[string]string{
		"CRASHCAP_ID":       strconv.FormatInt(rec.ID, 10),
		"CRASHCAP_FILENAME": rec.Filename,
		"CRASHCAP_SNAPSHOT": string(snap),
		"SYSLOG_IDENTIFIER": "crashcap",
	})
}
