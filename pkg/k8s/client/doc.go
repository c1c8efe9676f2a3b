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

// Package client builds the Kubernetes client used by the ConfigMap relay.
//
// GetKubeClient caches one client per process; BuildKubeClient and
// GetKubeClientWithConfig build a fresh one for an explicit kubeconfig:
//
//	cs, _, err := client.GetKubeClientWithConfig(cfg.Kubeconfig)
//	if err != nil {
//		return fmt.Errorf("failed to get kubernetes client: %w", err)
//	}
//
// Discovery order for an empty path is the KUBECONFIG environment variable,
// then ~/.kube/config, then the in-cluster service account.
package client
