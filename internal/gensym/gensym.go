// Package gensym generates fresh, collision-resistant symbol names for
// macro hygiene and the `gensym` builtin. Grounded in the pack's use of
// github.com/google/uuid for identifier generation; a counter alone would
// collide across concurrently-loaded libraries sharing one GlobalEnv.
package gensym

import "github.com/google/uuid"

// New returns a symbol name with prefix followed by 8 hex characters drawn
// from a fresh UUID.
func New(prefix string) string {
	if prefix == "" {
		prefix = "G__"
	}
	return prefix + uuid.NewString()[:8]
}
