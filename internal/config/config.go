// Package config implements the §6 context-initializer contract: load a
// corvid.yaml, resolve its allow-listed host classes, and build the
// rt.Context the reader/analyzer/interpreter pipeline runs against.
// Grounded in the teacher's internal/ext (yaml.v3-based funxy.yaml loading
// plus golang.org/x/tools/go/packages type introspection), narrowed from
// full Go-binding codegen to the single question this spec needs answered:
// which host class names may a program reach through the interop gateway.
package config

import (
	"fmt"
	"os"

	"golang.org/x/tools/go/packages"
	"gopkg.in/yaml.v3"

	"github.com/corvidlang/corvid/internal/interpreter"
	"github.com/corvidlang/corvid/internal/rt"
)

// Options is the top-level corvid.yaml document.
type Options struct {
	Namespaces []string         `yaml:"namespaces"`
	Bindings   map[string]int64 `yaml:"bindings"` // name -> int literal, for simple scripted envs
	Classes    ClassesConfig    `yaml:"classes"`
	RealizeMax int              `yaml:"realize-max"`
	DryRun     bool             `yaml:"dry-run"`
}

// ClassesConfig drives the §4.I allow-list: either AllowAll, or an explicit
// Allow list of class names, optionally expanded by resolving the exported
// types of Go packages named under Packages.
type ClassesConfig struct {
	AllowAll bool     `yaml:"allow-all"`
	Allow    []string `yaml:"allow"`
	Packages []string `yaml:"packages"`
}

// Load reads and parses a corvid.yaml file at path.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &opts, nil
}

// ResolvePackageClasses loads each import path in pkgPaths and returns the
// exported type names found in it — the class names a corvid.yaml may
// allow-list by package instead of enumerating every type by hand.
func ResolvePackageClasses(pkgPaths []string) ([]string, error) {
	if len(pkgPaths) == 0 {
		return nil, nil
	}
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes}
	pkgs, err := packages.Load(cfg, pkgPaths...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	var names []string
	for _, pkg := range pkgs {
		if pkg.Types == nil {
			continue
		}
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			obj := scope.Lookup(name)
			if obj != nil && obj.Exported() {
				names = append(names, obj.Name())
			}
		}
	}
	return names, nil
}

// NewContext builds a ready-to-use rt.Context from opts: a fresh runtime
// bootstrapped with the builtin namespace, the class allow-list, and the
// realize-max/dry-run knobs (§6).
func NewContext(opts *Options) (*rt.Context, error) {
	ctx := rt.NewContext()
	interpreter.Bootstrap(ctx)

	if opts == nil {
		return ctx, nil
	}

	if opts.Classes.AllowAll {
		ctx.Classes = rt.AllowAllClasses()
	} else {
		allow := append([]string{}, opts.Classes.Allow...)
		if len(opts.Classes.Packages) > 0 {
			pkgClasses, err := ResolvePackageClasses(opts.Classes.Packages)
			if err != nil {
				return nil, err
			}
			allow = append(allow, pkgClasses...)
		}
		ctx.Classes = rt.NewClassPolicy(allow...)
	}

	ctx.RealizeMax = opts.RealizeMax
	ctx.DryRun = opts.DryRun

	for _, ns := range opts.Namespaces {
		ctx.Env.EnsureNamespace(ns)
	}
	for name, val := range opts.Bindings {
		v := ctx.Env.EnsureNamespace("user").Intern(name)
		v.BindRoot(&rt.Int{Val: val})
	}
	return ctx, nil
}
