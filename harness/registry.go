package harness

import (
	"fmt"
	"slices"

	"github.com/quietforge/circuitsim/contracts/accessctl"
	"github.com/quietforge/circuitsim/contracts/counter"
	"github.com/quietforge/circuitsim/contracts/multitoken"
	"github.com/quietforge/circuitsim/contracts/nft"
	"github.com/quietforge/circuitsim/contracts/ownable"
	"github.com/quietforge/circuitsim/contracts/token"
	"github.com/quietforge/circuitsim/internal/manifest"
	"github.com/quietforge/circuitsim/sim"
)

// Entry binds a registered contract: a factory producing fresh simulator
// factories and the compiled manifest declaring its callable surface.
type Entry struct {
	Key      string
	Factory  func() *sim.Factory
	Manifest *manifest.Manifest
}

// Registry maps contract keys to their entries. Scenarios name contracts by
// key; the registry supplies everything a run needs to deploy and drive one.
type Registry struct {
	entries map[string]*Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]*Entry{}}
}

// Register compiles the manifest source and binds the contract under key.
// The manifest's declared contract name must match the key; a mismatch means
// the manifest belongs to a different contract.
func (r *Registry) Register(key string, factory func() *sim.Factory, manifestSrc []byte) error {
	if _, exists := r.entries[key]; exists {
		return fmt.Errorf("contract %q is already registered", key)
	}
	m, err := manifest.CompileBytes(manifestSrc, key+".cue")
	if err != nil {
		return fmt.Errorf("compile manifest for %q: %w", key, err)
	}
	if m.Contract != key {
		return fmt.Errorf("manifest declares contract %q, registered as %q", m.Contract, key)
	}
	r.entries[key] = &Entry{Key: key, Factory: factory, Manifest: m}
	return nil
}

// Lookup returns the entry registered under key.
func (r *Registry) Lookup(key string) (*Entry, bool) {
	e, ok := r.entries[key]
	return e, ok
}

// Keys returns the registered contract keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ValidateScenario checks a scenario against the registry without running
// it: the contract must be registered and every called circuit must be
// declared with matching arity.
func (r *Registry) ValidateScenario(sc *Scenario) error {
	entry, ok := r.Lookup(sc.Contract)
	if !ok {
		return fmt.Errorf("contract %q is not registered", sc.Contract)
	}
	if sc.Deploy != nil {
		if got, want := len(sc.Deploy.Args), len(entry.Manifest.Constructor.Args); got != want {
			return fmt.Errorf("deploy: want %d args, got %d", want, got)
		}
	}
	for i, step := range sc.Setup {
		if err := validateStep(entry.Manifest, step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}
	for i, step := range sc.Flow {
		if err := validateStep(entry.Manifest, step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(m *manifest.Manifest, step Step) error {
	decl, ok := m.Circuit(step.Call)
	if !ok {
		return fmt.Errorf("circuit %q is not declared", step.Call)
	}
	if len(step.Args) != len(decl.Args) {
		return fmt.Errorf("circuit %q: want %d args, got %d", step.Call, len(decl.Args), len(step.Args))
	}
	if step.Expect != nil && decl.Result == "unit" {
		return fmt.Errorf("circuit %q returns no value, expect is meaningless", step.Call)
	}
	return nil
}

// Builtin returns a registry with every contract in this repository
// registered under its package name.
func Builtin() *Registry {
	r := NewRegistry()
	register := func(key string, factory func() *sim.Factory, src []byte) {
		if err := r.Register(key, factory, src); err != nil {
			// Built-in manifests are embedded next to their modules; a
			// failure here is a build defect, not an input error.
			panic("harness: register builtin contract: " + err.Error())
		}
	}
	register("accessctl", accessctl.Factory, accessctl.ManifestSource)
	register("counter", counter.Factory, counter.ManifestSource)
	register("multitoken", multitoken.Factory, multitoken.ManifestSource)
	register("nft", nft.Factory, nft.ManifestSource)
	register("ownable", ownable.Factory, ownable.ManifestSource)
	register("token", token.Factory, token.ManifestSource)
	return r
}
