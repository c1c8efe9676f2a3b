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

package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/NVIDIA/crashcap/pkg/errors"
)

// RecordExt is the extension of persisted capture records counted at startup.
const RecordExt = ".json"

// Allocator hands out capture ids for a single output directory.
// The counter is seeded from the number of records already present, so ids
// keep growing across restarts of the same program. Two processes sharing a
// directory can still observe the same seed; Filename adds the pid and date
// to keep their artifacts apart.
type Allocator struct {
	mu   sync.Mutex
	dir  string
	next int64
}

// NewAllocator ensures dir exists and seeds the counter from the count of
// existing *.json records in it. A directory that cannot be created is fatal:
// there is nowhere to write captures to.
func NewAllocator(dir string) (*Allocator, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "output directory cannot be empty")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to create output directory", err,
			map[string]any{"directory": dir})
	}

	seed, err := countRecords(dir)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to scan output directory", err,
			map[string]any{"directory": dir})
	}

	return &Allocator{dir: dir, next: seed}, nil
}

// Dir returns the directory the allocator was seeded from.
func (a *Allocator) Dir() string {
	return a.dir
}

// Next returns the next id. Ids are strictly increasing for the lifetime of
// the allocator.
func (a *Allocator) Next() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.next
	a.next++
	return id
}

func countRecords(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	var n int64
	for _, e := range entries {
		if e.Type().IsRegular() && filepath.Ext(e.Name()) == RecordExt {
			n++
		}
	}
	return n, nil
}

// Filename builds the base name shared by every artifact of one capture:
//
//	Mon-Jan-02-2006-[app-]pid-id
//
// The date is local time rendered as weekday, month, day and year.
func Filename(t time.Time, app string, pid int, id int64) string {
	parts := strings.Fields(t.Format("Mon Jan 02 2006"))
	if app != "" {
		parts = append(parts, sanitize(app))
	}
	parts = append(parts, strconv.Itoa(pid), strconv.FormatInt(id, 10))
	return strings.Join(parts, "-")
}

// sanitize keeps an application name usable as a single path element.
func sanitize(app string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':':
			return '_'
		}
		return r
	}, app)
}

// Path joins dir with the capture base name and extension, for example
// Path("/var/crash/exceptions", "Mon-Jan-02-2006-42-0", ".json").
func Path(dir, filename, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s%s", filename, ext))
}
