package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidlang/corvid/internal/config"
	"github.com/corvidlang/corvid/internal/rt"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "corvid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadParsesYAML(t *testing.T) {
	path := writeTempConfig(t, `
namespaces:
  - scratch
bindings:
  width: 10
classes:
  allow:
    - String
realize-max: 500
dry-run: true
`)
	opts, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"scratch"}, opts.Namespaces)
	assert.Equal(t, int64(10), opts.Bindings["width"])
	assert.Equal(t, []string{"String"}, opts.Classes.Allow)
	assert.Equal(t, 500, opts.RealizeMax)
	assert.True(t, opts.DryRun)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewContextAppliesClassesBindingsAndNamespaces(t *testing.T) {
	opts := &config.Options{
		Namespaces: []string{"scratch"},
		Bindings:   map[string]int64{"width": 10},
		Classes:    config.ClassesConfig{Allow: []string{"String"}},
		RealizeMax: 200,
		DryRun:     true,
	}
	ctx, err := config.NewContext(opts)
	require.NoError(t, err)
	assert.True(t, ctx.Classes.Permits("String"))
	assert.False(t, ctx.Classes.Permits("Vector"))
	assert.Equal(t, 200, ctx.RealizeMax)
	assert.True(t, ctx.DryRun)

	ns := ctx.Env.EnsureNamespace("user")
	v, ok := ns.Lookup("width")
	require.True(t, ok)
	assert.Equal(t, "10", v.Root().String())

	assert.NotNil(t, ctx.Env.Namespace("scratch"))
}

func TestNewContextNilOptionsStillBootstraps(t *testing.T) {
	ctx, err := config.NewContext(nil)
	require.NoError(t, err)
	_, ok := ctx.Env.Resolve("user", &rt.Symbol{Name: "+"})
	assert.True(t, ok, "nil options must still bootstrap core builtins")
}

func TestNewContextAllowAll(t *testing.T) {
	opts := &config.Options{Classes: config.ClassesConfig{AllowAll: true}}
	ctx, err := config.NewContext(opts)
	require.NoError(t, err)
	assert.True(t, ctx.Classes.Permits("AnythingAtAll"))
}
