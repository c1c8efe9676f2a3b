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

// Package errors provides the structured errors crashcap returns. Each
// error carries an ErrorCode; callers test for one with HasCode, which also
// matches through fmt.Errorf wrapping.
//
// The relay timeout reported by terminate.Controller.Save looks like:
//
//	err := errors.NewWithContext(
//	    errors.ErrCodeTimeout,
//	    "relay did not complete in time",
//	    map[string]any{
//	        "filename": rec.Filename,
//	        "timeout":  timeout.String(),
//	    },
//	)
//
//	if errors.HasCode(err, errors.ErrCodeTimeout) {
//	    // the record is on disk but was not delivered
//	}
package errors
