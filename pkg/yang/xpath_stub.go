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

// XPath expressions appear in "path" (leafref), "must", and "when"
// statements. This package carries the raw expression text through the
// compiled tree without evaluating it, so a caller with its own XPath
// engine can evaluate it against instance data later.
type XPathExpr struct {
	Source string
}

// ParseXPath wraps raw, the text of a path/must/when statement, without
// parsing it. Callers needing real XPath evaluation must supply their
// own engine over Source; this package never inspects it.
func ParseXPath(raw string) *XPathExpr {
	return &XPathExpr{Source: raw}
}
