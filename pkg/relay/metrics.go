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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	relayTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crashcap_relay_total",
			Help: "Captures handed to a remote reporter by outcome",
		},
		[]string{"reporter", "status"}, // success, error or panic
	)

	relayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crashcap_relay_duration_seconds",
			Help:    "Time spent in remote reporters",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"reporter"},
	)
)
