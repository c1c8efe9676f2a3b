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

package fault

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	capturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crashcap_captures_total",
			Help: "Faults seen by the listener by entry path and outcome",
		},
		[]string{"path", "status"}, // panic|error, captured|skipped|failed
	)

	heapDumpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crashcap_heap_dumps_total",
			Help: "Out-of-band heap dumps by trigger and outcome",
		},
		[]string{"trigger", "status"}, // signal|manual, written|throttled|failed
	)
)
