// Package embedded ships the default grammar corpus compiled into the
// binary, the way the teacher's pkg/embedded embeds its prompt/data
// files: a go:embed directive per file rather than a runtime data
// directory dependency, so `setsinmotion <phrase>` works out of the box
// with no GRAMMAR_PATH configured.
package embedded

import (
	_ "embed"
)

//go:embed data/grammars/basic.grammar
var BasicGrammar []byte

//go:embed data/grammars/mainstream.grammar
var MainstreamGrammar []byte
