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

package yang

import "sync"

// A refcounted string dictionary, following the same mutex+map shape as
// typeDictionary (types.go) and identityDictionary (identity.go), keyed
// by string content instead of by defining node.

// dictEntry is one interned string and its reference count.
type dictEntry struct {
	s    string
	refs int32
}

// A Dictionary is a process-wide-style registry of interned strings. Equal
// byte sequences always resolve to the same *string, so string identity
// (pointer equality) may be used in place of value equality once a value
// has been interned.
type Dictionary struct {
	mu  sync.Mutex
	tab map[string]*dictEntry
}

// NewDictionary returns an empty Dictionary ready to use.
func NewDictionary() *Dictionary {
	return &Dictionary{tab: map[string]*dictEntry{}}
}

// Intern returns the canonical *string for s, incrementing its reference
// count. Two calls with equal s always return the identical pointer.
func (d *Dictionary) Intern(s string) *string {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.tab[s]
	if !ok {
		e = &dictEntry{s: s}
		d.tab[s] = e
	}
	e.refs++
	return &e.s
}

// Release decrements the reference count of the interned string backing p.
// Once the count reaches zero the entry is removed from the dictionary; p
// must not be interned again through this Dictionary after that point. It
// is a programming error to Release a *string not returned by Intern on
// the same Dictionary; Release is a no-op in that case.
func (d *Dictionary) Release(p *string) {
	if p == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.tab[*p]
	if !ok || &e.s != p {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(d.tab, *p)
	}
}

// Len returns the number of distinct strings currently interned, for
// tests and diagnostics.
func (d *Dictionary) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tab)
}

// RefCount returns the current reference count of s, or 0 if s is not
// interned.
func (d *Dictionary) RefCount(s string) int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.tab[s]; ok {
		return e.refs
	}
	return 0
}
