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

// Conditional features: if-feature expressions are compiled into a
// postfix opcode stream once, rather than re-parsed and re-walked on
// every evaluation. Feature state changes are propagated through a
// dependent cascade, with back-links built the same way identity base
// derivations are tracked. The expression tokenizer is a small
// single-purpose scanner, the same shape used by the statement lexer.

// featureOp is one of the four opcodes packed two bits at a time into a
// CompiledFeature's postfix expr stream.
type featureOp byte

const (
	opOR featureOp = iota
	opFEATURE
	opNOT
	opAND
)

// A CompiledFeature is the compiled form of a "feature" statement: its
// enable/disable flag, its compiled if-feature expressions (each stored
// as a postfix opcode stream over a feature operand array), and the set
// of other features whose if-feature expressions reference it.
type CompiledFeature struct {
	Name       string
	Enabled    bool
	Status     string
	exprs      []*ifFeatureExpr
	dependents []*CompiledFeature
}

// ifFeatureExpr is one compiled if-feature expression: a postfix opcode
// stream over an ordered operand array of resolved feature references.
// Two bits per opcode slot, four slots per byte.
type ifFeatureExpr struct {
	features []*CompiledFeature
	ops      []byte // packed opcodes, 2 bits/slot
	nslots   int
	raw      string // original source text, for diagnostics
}

func (e *ifFeatureExpr) opAt(i int) featureOp {
	b := e.ops[i/4]
	shift := uint(i%4) * 2
	return featureOp((b >> shift) & 0x3)
}

// evaluate recursively consumes the opcode stream from the left: each
// step reads one opcode; FEATURE returns the next feature's Enabled bit;
// NOT recurses once and inverts; AND/OR recurse twice and combine.
func (e *ifFeatureExpr) evaluate() bool {
	pos := 0
	fpos := 0
	var eval func() bool
	eval = func() bool {
		op := e.opAt(pos)
		pos++
		switch op {
		case opFEATURE:
			f := e.features[fpos]
			fpos++
			return f.Enabled
		case opNOT:
			return !eval()
		case opAND:
			// Both operands follow the operator in the stream; AND/OR
			// are commutative over booleans, so the read order never
			// changes the result, and both sides must be consumed to
			// keep the stream cursor aligned.
			l := eval()
			r := eval()
			return l && r
		case opOR:
			l := eval()
			r := eval()
			return l || r
		}
		return false
	}
	return eval()
}

// --- compilation ---

// featureToken is one lexical unit of an if-feature expression.
type featureTokenKind int

const (
	ftEOF featureTokenKind = iota
	ftLParen
	ftRParen
	ftNot
	ftAnd
	ftOr
	ftIdent
)

type featureToken struct {
	kind featureTokenKind
	text string
}

// lexFeatureExpr tokenizes a textual if-feature expression into a slice
// of tokens, left to right. Identifiers may carry a "prefix:name" form.
func lexFeatureExpr(s string) ([]featureToken, error) {
	var toks []featureToken
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, featureToken{kind: ftLParen})
			i++
		case c == ')':
			toks = append(toks, featureToken{kind: ftRParen})
			i++
		default:
			start := i
			for i < len(s) && !strings.ContainsRune(" \t\n\r()", rune(s[i])) {
				i++
			}
			word := s[start:i]
			switch word {
			case "not":
				toks = append(toks, featureToken{kind: ftNot})
			case "and":
				toks = append(toks, featureToken{kind: ftAnd})
			case "or":
				toks = append(toks, featureToken{kind: ftOr})
			case "":
				// unreachable, guarded by the loop condition above
			default:
				toks = append(toks, featureToken{kind: ftIdent, text: word})
			}
		}
	}
	return toks, nil
}

// featureLookup resolves feature references by name: unprefixed names
// resolve within mod, prefixed names locate the imported module via its
// prefix then that module's feature array.
type featureLookup func(name string) (*CompiledFeature, error)

// compileIfFeature compiles a textual if-feature expression into an
// ifFeatureExpr using a single right-to-left pass with an operator stack
// (no intermediate AST). Precedence is not > and > or; parentheses
// override.
// Parenthesized or multi-feature expressions are only legal in YANG 1.1;
// yangVersion "1" or "" rejects them with a Syntax diagnostic.
func compileIfFeature(text, yangVersion string, lookup featureLookup) (*ifFeatureExpr, *Diagnostic) {
	toks, err := lexFeatureExpr(text)
	if err != nil {
		return nil, &Diagnostic{Code: Syntax, Message: err.Error()}
	}
	if len(toks) == 0 {
		return nil, &Diagnostic{Code: Syntax, Message: "empty if-feature expression"}
	}

	hasParen := false
	identCount := 0
	for _, t := range toks {
		if t.kind == ftLParen || t.kind == ftRParen {
			hasParen = true
		}
		if t.kind == ftIdent {
			identCount++
		}
	}
	isV11 := yangVersion == "1.1"
	if !isV11 && (hasParen || identCount > 1) {
		return nil, &Diagnostic{Code: Syntax, Message: fmt.Sprintf("if-feature %q: parentheses or multiple features require yang-version 1.1", text)}
	}

	// Right-to-left scan with an operator stack, settling each
	// operand/operator into the output as soon as precedence allows.
	var features []*CompiledFeature
	var ops []featureOp

	// opStack holds pending operators encountered while scanning right
	// to left; it unwinds in the precedence order not > and > or.
	type stackOp struct {
		op      featureOp
		isParen bool
	}
	var opStack []stackOp
	var outRev []interface{} // either featureOp or *CompiledFeature, built in reverse of the stream's final orientation

	prec := func(op featureOp) int {
		switch op {
		case opNOT:
			return 3
		case opAND:
			return 2
		case opOR:
			return 1
		}
		return 0
	}

	popTo := func(minPrec int) {
		for len(opStack) > 0 && !opStack[len(opStack)-1].isParen && prec(opStack[len(opStack)-1].op) >= minPrec {
			outRev = append(outRev, opStack[len(opStack)-1].op)
			opStack = opStack[:len(opStack)-1]
		}
	}

	for i := len(toks) - 1; i >= 0; i-- {
		t := toks[i]
		switch t.kind {
		case ftIdent:
			f, err := lookup(t.text)
			if err != nil {
				return nil, &Diagnostic{Code: NotFound, Message: err.Error()}
			}
			outRev = append(outRev, f)
		case ftRParen:
			opStack = append(opStack, stackOp{isParen: true})
		case ftLParen:
			found := false
			for len(opStack) > 0 {
				top := opStack[len(opStack)-1]
				opStack = opStack[:len(opStack)-1]
				if top.isParen {
					found = true
					break
				}
				outRev = append(outRev, top.op)
			}
			if !found {
				return nil, &Diagnostic{Code: Syntax, Message: fmt.Sprintf("if-feature %q: unbalanced parentheses", text)}
			}
		case ftNot:
			popTo(prec(opNOT))
			opStack = append(opStack, stackOp{op: opNOT})
		case ftAnd:
			popTo(prec(opAND))
			opStack = append(opStack, stackOp{op: opAND})
		case ftOr:
			popTo(prec(opOR))
			opStack = append(opStack, stackOp{op: opOR})
		}
	}
	for len(opStack) > 0 {
		top := opStack[len(opStack)-1]
		opStack = opStack[:len(opStack)-1]
		if top.isParen {
			return nil, &Diagnostic{Code: Syntax, Message: fmt.Sprintf("if-feature %q: unbalanced parentheses", text)}
		}
		outRev = append(outRev, top.op)
	}

	// outRev was built operands-first while scanning right to left;
	// reversing it places each operator immediately ahead of its
	// operands, the orientation evaluate consumes the stream in.
	for i, j := 0, len(outRev)-1; i < j; i, j = i+1, j-1 {
		outRev[i], outRev[j] = outRev[j], outRev[i]
	}

	operandCount, binaryCount := 0, 0
	for _, v := range outRev {
		switch x := v.(type) {
		case *CompiledFeature:
			features = append(features, x)
			ops = append(ops, opFEATURE)
			operandCount++
		case featureOp:
			ops = append(ops, x)
			if x != opNOT {
				binaryCount++
			}
		}
	}
	// Every binary operator consumes two operands and produces one, so a
	// well-formed expression has exactly one more operand than binary
	// operators ("a b" with no operator, or "a and" with no right side,
	// fails here).
	if operandCount == 0 || operandCount != binaryCount+1 {
		return nil, &Diagnostic{Code: Syntax, Message: fmt.Sprintf("if-feature %q: malformed operand/operator count", text)}
	}

	packed := make([]byte, (len(ops)+3)/4)
	for i, op := range ops {
		packed[i/4] |= byte(op) << (uint(i%4) * 2)
	}

	return &ifFeatureExpr{features: features, ops: packed, nslots: len(ops), raw: text}, nil
}

// --- change propagation ---

// featureSnapshot captures Enabled for every feature in a module, for
// atomic rollback.
func featureSnapshot(feats map[string]*CompiledFeature) map[string]bool {
	snap := make(map[string]bool, len(feats))
	for name, f := range feats {
		snap[name] = f.Enabled
	}
	return snap
}

func restoreFeatureSnapshot(feats map[string]*CompiledFeature, snap map[string]bool) {
	for name, f := range feats {
		f.Enabled = snap[name]
	}
}

// changeFeature flips feature(s) in feats to value. name may be "*" to
// mean "every feature whose current state differs from value". A single
// feature that cannot be enabled because its if-feature is false is left
// unchanged and reported as Denied. A wildcard change repeats its pass to
// a fixed point; when enabling, if any candidate is still disabled there,
// every feature is restored to its prior state. After a successful
// change, dependents whose if-feature now evaluates false are disabled in
// turn; this cascade never enables a feature and is never rolled back.
func changeFeature(feats map[string]*CompiledFeature, name string, value bool) error {
	snapshot := featureSnapshot(feats)

	var candidates []*CompiledFeature
	if name == "*" {
		for _, f := range feats {
			if f.Enabled != value {
				candidates = append(candidates, f)
			}
		}
	} else {
		f, ok := feats[name]
		if !ok {
			return &Diagnostic{Code: NotFound, Message: fmt.Sprintf("no such feature: %s", name)}
		}
		if f.Enabled != value {
			candidates = append(candidates, f)
		}
	}

	if name != "*" {
		// Single-feature change: verify immediately on enable, abort
		// without changes on failure.
		if len(candidates) == 1 && value {
			f := candidates[0]
			if !ifFeatureAllTrue(f) {
				return &Diagnostic{Code: Denied, Message: fmt.Sprintf("feature %s: if-feature conflict", f.Name)}
			}
		}
		for _, f := range candidates {
			f.Enabled = value
		}
	} else {
		// Wildcard: repeat the pass while at least one feature was
		// enabled in the previous pass, until a fixed point.
		changedThisRound := true
		for changedThisRound {
			changedThisRound = false
			for _, f := range candidates {
				if f.Enabled == value {
					continue
				}
				if value && !ifFeatureAllTrue(f) {
					continue
				}
				f.Enabled = value
				changedThisRound = true
			}
		}
		if value {
			var stillFalse []string
			for _, f := range candidates {
				if f.Enabled != value {
					stillFalse = append(stillFalse, f.Name)
				}
			}
			if len(stillFalse) > 0 {
				restoreFeatureSnapshot(feats, snapshot)
				return &Diagnostic{Code: Denied, Message: fmt.Sprintf("features could not be enabled due to if-feature conflicts: %s", strings.Join(stillFalse, ", "))}
			}
		}
	}

	// Cascade: walk each changed feature's dependents; any dependent
	// currently enabled whose if-feature now evaluates false is
	// disabled and added to the work list. No dependent is ever
	// auto-enabled.
	work := append([]*CompiledFeature(nil), candidates...)
	seen := map[*CompiledFeature]bool{}
	for len(work) > 0 {
		cur := work[0]
		work = work[1:]
		for _, dep := range cur.dependents {
			if dep.Enabled && !ifFeatureAllTrue(dep) {
				dep.Enabled = false
				if !seen[dep] {
					seen[dep] = true
					work = append(work, dep)
				}
			}
		}
	}

	return nil
}

// ifFeatureAllTrue reports whether every one of f's if-feature
// expressions currently evaluates true. A feature with no if-feature
// expressions is always enable-able.
func ifFeatureAllTrue(f *CompiledFeature) bool {
	for _, e := range f.exprs {
		if !e.evaluate() {
			return false
		}
	}
	return true
}
