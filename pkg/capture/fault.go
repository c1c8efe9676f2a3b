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

package capture

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/NVIDIA/crashcap/pkg/snapshotter"
)

const maxFrames = 64

// Fault is a describable failure: a message plus the stack it was raised on.
type Fault interface {
	error
	StackTrace() []string
}

// Framer is implemented by faults that captured program counters.
type Framer interface {
	Frames() []snapshotter.Frame
}

type fault struct {
	msg    string
	stack  []string
	frames []snapshotter.Frame
	cause  error
}

func (f *fault) Error() string { return f.msg }
func (f *fault) StackTrace() []string { return f.stack }
func (f *fault) Frames() []snapshotter.Frame { return f.frames }
func (f *fault) Unwrap() error { return f.cause }

// FromPanic describes a recovered panic value. It must be called from the
// deferred function that recovered, so the stack still holds the panicking
// frames.
func FromPanic(v any) Fault {
	f := &fault{
		stack:  []string{string(debug.Stack())},
		frames: callers(3),
	}
	switch e := v.(type) {
	case error:
		f.msg = e.Error()
		f.cause = e
	case string:
		f.msg = e
	default:
		f.msg = fmt.Sprint(v)
	}
	return f
}

// FromError describes err. A Fault is returned unchanged; any other error
// gets the caller's stack.
func FromError(err error) Fault {
	if err == nil {
		err = errors.New("unknown error")
	}

	var existing Fault
	if errors.As(err, &existing) {
		return existing
	}

	return &fault{
		msg:    err.Error(),
		stack:  []string{string(debug.Stack())},
		frames: callers(3),
		cause:  err,
	}
}

// FromMessage creates a fault for a bare message, captured at the caller.
func FromMessage(msg string) Fault {
	return &fault{
		msg:    msg,
		stack:  []string{string(debug.Stack())},
		frames: callers(3),
	}
}

func callers(skip int) []snapshotter.Frame {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return nil
	}

	main := mainModule()
	frames := runtime.CallersFrames(pcs[:n])
	out := make([]snapshotter.Frame, 0, n)
	for {
		fr, more := frames.Next()
		out = append(out, snapshotter.Frame{
			Function: fr.Function,
			File:     fr.File,
			Line:     fr.Line,
			Failed:   ownFrame(fr.Function, main),
		})
		if !more {
			break
		}
	}
	return out
}

var mainModule = sync.OnceValue(func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	return info.Main.Path
})

// ownFrame reports whether fn belongs to the program rather than the runtime
// or a dependency.
func ownFrame(fn, mainPath string) bool {
	if fn == "" {
		return false
	}
	if strings.HasPrefix(fn, "main.") {
		return true
	}
	if mainPath == "" {
		return false
	}
	return strings.HasPrefix(fn, mainPath+".") || strings.HasPrefix(fn, mainPath+"/")
}
