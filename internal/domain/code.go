package domain

import (
	"fmt"
	"math/rand"
)

// CodeGenerator samples human-readable join codes of the form "SOLEIL-73".
// Uniqueness is NOT guaranteed here: the registry checks each sample against
// the store and retries, which is enough because the code space
// (len(words) × 90) is large relative to expected concurrent creations.
type CodeGenerator struct {
	words []string
}

func NewCodeGenerator(words []string) *CodeGenerator {
	if len(words) == 0 {
		panic("code generator needs a non-empty word list")
	}
	return &CodeGenerator{words: words}
}

// Next returns a fresh candidate code.
func (g *CodeGenerator) Next() string {
	word := g.words[rand.Intn(len(g.words))]
	num := 10 + rand.Intn(90) // 10-99
	return fmt.Sprintf("%s-%d", word, num)
}
