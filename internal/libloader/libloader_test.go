package libloader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvidlang/corvid/internal/libloader"
	"github.com/corvidlang/corvid/internal/rt"
)

func TestStaticLoaderFound(t *testing.T) {
	loader := libloader.StaticLoader{
		"mathy": {File: "mathy.cv", Source: "(def square (fn [x] (* x x)))"},
	}
	res, ok := loader.LoadFn(rt.LoadRequest{Namespace: "mathy"})
	assert.True(t, ok)
	assert.Equal(t, "mathy.cv", res.File)
}

func TestStaticLoaderNotFound(t *testing.T) {
	loader := libloader.StaticLoader{}
	res, ok := loader.LoadFn(rt.LoadRequest{Namespace: "unknown"})
	assert.False(t, ok)
	assert.Nil(t, res)
}
