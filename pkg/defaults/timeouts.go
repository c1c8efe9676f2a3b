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

package defaults

import "time"

const (
	// RelayTimeout is the default deadline for handing a capture to the
	// remote relay before the process is terminated anyway.
	RelayTimeout = 5 * time.Second

	// CollectorTimeout is the default timeout for snapshot collectors.
	// Collectors should respect parent context deadlines when shorter.
	CollectorTimeout = 3 * time.Second
)

const (
	// SignalDumpInterval is the minimum interval between two heap dumps
	// requested through the diagnostic signal.
	SignalDumpInterval = 30 * time.Second

	// SignalDumpBurst is the number of signal heap dumps allowed back to back.
	SignalDumpBurst = 1
)

const (
	// ConfigMapWriteTimeout is the timeout for writing to ConfigMaps.
	ConfigMapWriteTimeout = 10 * time.Second

	// OCIPushTimeout is the timeout for pushing a capture to an OCI registry.
	OCIPushTimeout = 30 * time.Second
)

const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 10 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 3 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 3 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 5 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second
)
