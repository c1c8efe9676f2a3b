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

package snapshotter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	snapshotBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crashcap_snapshot_build_duration_seconds",
			Help:    "Time taken to assemble a crash snapshot",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 3, 10},
		},
	)

	snapshotBuildTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crashcap_snapshot_build_total",
			Help: "Total number of snapshot builds",
		},
		[]string{"status"}, // success or canceled
	)

	snapshotCollectorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crashcap_snapshot_collector_duration_seconds",
			Help:    "Time taken by individual collectors",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 3},
		},
		[]string{"collector"}, // environment, repository, system, process
	)

	snapshotCollectorErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crashcap_snapshot_collector_errors_total",
			Help: "Collector failures that left a snapshot group empty",
		},
		[]string{"collector"},
	)
)
