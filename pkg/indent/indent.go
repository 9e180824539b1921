// Copyright 2015 Google Inc.
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

// Package indent prefixes each line of text written to it with a fixed
// prefix string.
package indent

import "io"

// String returns in with prefix prepended to the start of every line.  A
// trailing newline in in does not produce a dangling prefix-only line.
func String(prefix, in string) string {
	return string(Bytes([]byte(prefix), []byte(in)))
}

// Bytes is the []byte equivalent of String.
func Bytes(prefix, in []byte) []byte {
	if len(in) == 0 {
		return in
	}
	var out []byte
	out = append(out, prefix...)
	for i, b := range in {
		out = append(out, b)
		if b == '\n' && i != len(in)-1 {
			out = append(out, prefix...)
		}
	}
	return out
}

// A Writer inserts prefix at the start of every line written through it.
type Writer struct {
	w         io.Writer
	prefix    []byte
	atLineStart bool
}

// NewWriter returns a Writer that writes to w, prefixing every line with
// prefix.
func NewWriter(w io.Writer, prefix string) *Writer {
	return &Writer{w: w, prefix: []byte(prefix), atLineStart: true}
}

// Write implements io.Writer.  The returned count is always the number of
// bytes of buf consumed, never counting the bytes of inserted prefix, so a
// caller sees the same accounting as if no indentation were applied.
func (w *Writer) Write(buf []byte) (int, error) {
	var out []byte
	// ends[i] is the length of out once buf[i] has been added to it.
	ends := make([]int, len(buf))
	for i, b := range buf {
		if w.atLineStart {
			out = append(out, w.prefix...)
		}
		out = append(out, b)
		ends[i] = len(out)
		w.atLineStart = b == '\n'
	}
	n, err := w.w.Write(out)
	consumed := 0
	for consumed < len(buf) && ends[consumed] <= n {
		consumed++
	}
	return consumed, err
}
