package gensym_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvidlang/corvid/internal/gensym"
)

func TestNewIsUniqueAndPrefixed(t *testing.T) {
	a := gensym.New("tmp-")
	b := gensym.New("tmp-")
	assert.NotEqual(t, a, b)
	assert.Len(t, a, len("tmp-")+8)

	def := gensym.New("")
	assert.Contains(t, def, "G__")
}
