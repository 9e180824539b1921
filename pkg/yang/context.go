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

import (
	"fmt"
	"strings"
)

// Context ties together the interning dictionary (dict.go), the
// conditional-feature engine (feature.go), the pattern adapter
// (pattern.go), the revision-aware loader (loader.go), and the
// Modules/Entry machinery (modules.go, entry.go) into a single
// parse-then-compile pipeline. The underlying Modules' own Path search
// remains available as a fallback so Context works whether or not a
// caller ever configures its own search directories.

// CompiledModule is the compiled form of a single YANG module: its
// linked/merged Entry tree plus the feature table this pipeline adds
// on top.
type CompiledModule struct {
	Name     string
	Revision string
	Source   *Module
	Entry    *Entry
	Features map[string]*CompiledFeature
}

// Context is a single parse-and-compile session: a source registry, an
// interning dictionary, a diagnostic buffer, and a loader for resolving
// module names to source files. Nothing about a Context is safe for
// concurrent use from multiple goroutines.
type Context struct {
	Options        Options
	CompileOptions CompileOptions

	modules *Modules
	dict    *Dictionary
	diags   Diagnostics
	loader  *Loader

	compiled map[string]*CompiledModule
}

// NewContext creates an empty Context ready for Parse and Compile calls.
func NewContext(opts Options) *Context {
	ms := NewModules()
	ms.ParseOptions = opts
	return &Context{
		Options:  opts,
		modules:  ms,
		dict:     NewDictionary(),
		loader:   NewLoader(),
		compiled: map[string]*CompiledModule{},
	}
}

// AddSearchDir indexes dir (non-recursively) as a place to look for YANG
// source files by module name.
func (c *Context) AddSearchDir(dir string) error {
	return c.loader.AddDir(dir)
}

// AddSearchDirRecursive indexes dir and every subdirectory beneath it.
func (c *Context) AddSearchDirRecursive(dir string) error {
	return c.loader.AddDirRecursive(dir)
}

// Parse reads and parses the named module (by file path, bare module
// name, or "name@revision") into the Context's parsed-module registry. It
// resolves the name via the Context's Loader first, falling back to the
// Path search Modules.Read already performs, so a Context works whether
// or not AddSearchDir was ever called. A name resolving to a ".yin"
// file is reported through the YIN stub (see ParseDataFormat).
func (c *Context) Parse(name string) error {
	if p, err := c.loader.Find(name); err == nil {
		if strings.HasSuffix(p, ".yin") {
			d := &Diagnostic{Code: NotFound, Message: fmt.Sprintf("%s: YIN input is not implemented", p)}
			c.diags.add(d)
			return d
		}
		data, rerr := readFile(p)
		if rerr != nil {
			c.diags.add(&Diagnostic{Code: NotFound, Message: rerr.Error()})
			return rerr
		}
		if c.Options.MaxSourceBytes > 0 && int64(len(data)) > c.Options.MaxSourceBytes {
			d := &Diagnostic{Code: OutOfMemory, Message: fmt.Sprintf("%s: %d bytes exceeds MaxSourceBytes %d", p, len(data), c.Options.MaxSourceBytes)}
			c.diags.add(d)
			return d
		}
		if err := c.modules.Parse(string(data), p); err != nil {
			c.diags.add(&Diagnostic{Code: Syntax, Message: err.Error()})
			return err
		}
		return nil
	}

	if err := c.modules.Read(name); err != nil {
		c.diags.add(&Diagnostic{Code: NotFound, Message: err.Error()})
		return err
	}
	return nil
}

// Format identifies the source syntax of module text handed to
// ParseDataFormat.
type Format int

const (
	// FormatYANG is the compact YANG syntax.
	FormatYANG Format = iota
	// FormatYIN is the XML projection of YANG. Parsing it is a
	// forward-declared stub.
	FormatYIN
)

// ParseDataFormat parses literal module source text in the given
// format. FormatYIN is not implemented and always produces a
// diagnostic.
func (c *Context) ParseDataFormat(data, name string, f Format) error {
	if f == FormatYIN {
		d := &Diagnostic{Code: NotFound, Message: fmt.Sprintf("%s: YIN input is not implemented", name)}
		c.diags.add(d)
		return d
	}
	return c.ParseData(data, name)
}

// ParseData parses literal YANG source text under the given name (used
// for diagnostics), without any file lookup.
func (c *Context) ParseData(data, name string) error {
	if c.Options.MaxSourceBytes > 0 && int64(len(data)) > c.Options.MaxSourceBytes {
		d := &Diagnostic{Code: OutOfMemory, Message: fmt.Sprintf("%s: %d bytes exceeds MaxSourceBytes %d", name, len(data), c.Options.MaxSourceBytes)}
		c.diags.add(d)
		return d
	}
	if err := c.modules.Parse(data, name); err != nil {
		c.diags.add(&Diagnostic{Code: Syntax, Message: err.Error()})
		return err
	}
	return nil
}

// Compile processes every module and submodule parsed so far into its
// Entry tree (via Modules.Process) and compiles each module's feature
// statements into a CompiledModule. It returns the compiled module
// named name.
func (c *Context) Compile(name string) (*CompiledModule, error) {
	if errs := c.modules.Process(); len(errs) != 0 {
		for _, e := range errs {
			c.diags.add(&Diagnostic{Code: Semantic, Message: e.Error()})
		}
		return nil, errs[0]
	}

	mod, ok := c.modules.Modules[name]
	if !ok {
		d := &Diagnostic{Code: NotFound, Message: fmt.Sprintf("module not found: %s", name)}
		c.diags.add(d)
		return nil, d
	}

	cm, err := c.compileModule(mod)
	if err != nil {
		c.diags.add(&Diagnostic{Code: Semantic, Message: err.Error()})
		return nil, err
	}
	c.compiled[cm.Name] = cm
	if c.CompileOptions.FreeSource {
		cm.Source = nil
	}
	return cm, nil
}

// compileModule builds the CompiledFeature table for mod, compiling each
// feature's if-feature expressions and wiring the dependent back-links
// the cascade in ChangeFeature walks. This mirrors identity.go's
// resolveIdentities two-pass shape: first materialize every feature as a
// lookup target, then compile expressions that may reference any of them
// (including forward references and features in imported modules).
func (c *Context) compileModule(mod *Module) (*CompiledModule, error) {
	feats := map[string]*CompiledFeature{}
	for _, f := range mod.Feature {
		feats[f.Name] = &CompiledFeature{Name: f.Name, Enabled: true, Status: statusOf(f.Status)}
	}

	lookup := c.featureLookupFor(mod, feats)
	yv := ""
	if mod.YangVersion != nil {
		yv = mod.YangVersion.Name
	}

	for _, f := range mod.Feature {
		cf := feats[f.Name]
		for _, v := range f.IfFeature {
			expr, diag := compileIfFeature(v.Name, yv, lookup)
			if diag != nil {
				return nil, diag
			}
			cf.exprs = append(cf.exprs, expr)
			for _, dep := range expr.features {
				dep.dependents = append(dep.dependents, cf)
			}
		}
	}

	entry := ToEntry(mod)
	if diag := attachIfFeatures(entry, lookup, yv); diag != nil {
		return nil, diag
	}

	// The (name, revision) identity strings are recorded in the
	// context's interning dictionary; its refcounts expose how many
	// compiled modules share each identity, and Close drops them all
	// in one sweep.
	return &CompiledModule{
		Name:     *c.dict.Intern(mod.Name),
		Revision: *c.dict.Intern(mod.Current()),
		Source:   mod,
		Entry:    entry,
		Features: feats,
	}, nil
}

// extraIfFeatureKey is the Extra map key entry.go's generic
// unimplemented-keyword handling stashes raw "if-feature" statements
// under (one *Value per statement). attachIfFeatures compiles each into an
// ifFeatureExpr and appends it under compiledIfFeatureKey, so FeatureEnabled
// can evaluate a node's gating without re-walking the AST.
const (
	extraIfFeatureKey    = "if-feature"
	compiledIfFeatureKey = "yangcore:if-feature"
)

// attachIfFeatures walks e and every descendant, compiling whatever raw
// if-feature text entry.go's generic handling collected into
// Extra["if-feature"] and storing the compiled expressions back into
// Extra["yangcore:if-feature"] for FeatureEnabled to consume.
func attachIfFeatures(e *Entry, lookup featureLookup, yangVersion string) *Diagnostic {
	if e == nil {
		return nil
	}
	if raw, ok := e.Extra[extraIfFeatureKey]; ok {
		for _, v := range raw {
			val, ok := v.(*Value)
			if !ok || val == nil {
				continue
			}
			expr, diag := compileIfFeature(val.Name, yangVersion, lookup)
			if diag != nil {
				diag.Path = schemaPath(e.Node)
				return diag
			}
			if e.Extra == nil {
				e.Extra = map[string][]interface{}{}
			}
			e.Extra[compiledIfFeatureKey] = append(e.Extra[compiledIfFeatureKey], expr)
		}
	}
	for _, child := range e.children {
		if diag := attachIfFeatures(child, lookup, yangVersion); diag != nil {
			return diag
		}
	}
	return nil
}

// FeatureEnabled reports whether every if-feature expression attached to e
// (via attachIfFeatures during Compile) currently evaluates true. An
// Entry with no if-feature statements is always enabled.
func FeatureEnabled(e *Entry) bool {
	for _, v := range e.Extra[compiledIfFeatureKey] {
		expr, ok := v.(*ifFeatureExpr)
		if !ok {
			continue
		}
		if !expr.evaluate() {
			return false
		}
	}
	return true
}

// featureLookupFor returns a featureLookup resolving names local to mod
// (found in local) directly, and "prefix:name" references by following
// mod's imports, compiling the imported module's features on demand.
func (c *Context) featureLookupFor(mod *Module, local map[string]*CompiledFeature) featureLookup {
	return func(name string) (*CompiledFeature, error) {
		prefix, bare := getPrefix(name)
		if prefix == "" || prefix == mod.GetPrefix() {
			if f, ok := local[bare]; ok {
				return f, nil
			}
			return nil, fmt.Errorf("no such feature: %s", name)
		}
		im, err := mod.Modules.FindModuleByPrefix(prefix)
		if err != nil {
			return nil, fmt.Errorf("feature %s: %v", name, err)
		}
		if existing, ok := c.compiled[im.Name]; ok {
			if f, ok := existing.Features[bare]; ok {
				return f, nil
			}
			return nil, fmt.Errorf("no such feature: %s", name)
		}
		cm, err := c.compileModule(im)
		if err != nil {
			return nil, err
		}
		c.compiled[cm.Name] = cm
		f, ok := cm.Features[bare]
		if !ok {
			return nil, fmt.Errorf("no such feature: %s", name)
		}
		return f, nil
	}
}

func statusOf(v *Value) string {
	if v == nil {
		return "current"
	}
	return v.Name
}

// ChangeFeature enables or disables the named feature ("*" for all
// features currently differing from enable) within cm, applying the
// three-phase algorithm documented in feature.go's changeFeature: a
// single-feature change aborts without effect if denied by if-feature; a
// wildcard change repeats to a fixed point and rolls back entirely if it
// cannot reach one; either way, a successful change then cascades
// disablement (never auto-enablement) to dependent features whose
// if-feature now evaluates false.
func (c *Context) ChangeFeature(cm *CompiledModule, name string, enable bool) error {
	if err := changeFeature(cm.Features, name, enable); err != nil {
		if d, ok := err.(*Diagnostic); ok {
			c.diags.add(d)
		} else {
			c.diags.add(&Diagnostic{Code: Denied, Message: err.Error()})
		}
		return err
	}
	return nil
}

// Diagnostics drains and returns every diagnostic accumulated by this
// Context's Parse, Compile, and ChangeFeature calls so far.
func (c *Context) Diagnostics() []Diagnostic {
	return c.diags.Drain()
}

// Modules exposes the underlying parsed-module registry for callers that
// need the lower-level Modules API directly (e.g. FindModule, direct
// Entry access before compilation).
func (c *Context) Modules() *Modules {
	return c.modules
}

// Close releases this Context's interned strings. A Context is not
// usable after Close.
func (c *Context) Close() {
	c.dict = nil
	c.compiled = nil
}
