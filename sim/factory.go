package sim

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/quietforge/circuitsim/circuit"
	"github.com/quietforge/circuitsim/ledger"
)

// addressDomain separates instance addresses from every other DomainHash use.
const addressDomain = "circuitsim/address"

// Config describes one contract to the factory. Module is required; the
// remaining fields default to pass-through behavior when nil.
type Config struct {
	// Module binds a witness table into a fresh compiled-module binding.
	Module circuit.ModuleFactory

	// DefaultPrivate constructs the private state used when deployment does
	// not inject one. Nil means no private state.
	DefaultPrivate func() any

	// MapArgs translates simulator constructor arguments into the compiled
	// module's own initializer arguments. Nil passes them through unchanged.
	MapArgs func(args []ledger.Value) []ledger.Value

	// DefaultWitnesses builds the witness table used when deployment does
	// not supply one. Nil means an empty table.
	DefaultWitnesses func() circuit.WitnessTable

	// DecodeLedger turns the raw state tree into the contract's typed view
	// for PublicState. Nil returns the tree itself.
	DecodeLedger func(tree *ledger.StateTree) (any, error)
}

// Factory deploys simulator instances for one contract. Concrete simulators
// (ownership, tokens, access control) wrap a Factory and add domain-named
// methods that delegate to the dispatch tables; no state logic is duplicated
// per contract.
type Factory struct {
	cfg Config
	seq uint64 // deploy ordinal, feeds derived instance addresses
}

// NewFactory builds a Factory, filling in pass-through defaults for nil
// optional config fields.
func NewFactory(cfg Config) *Factory {
	if cfg.DefaultPrivate == nil {
		cfg.DefaultPrivate = func() any { return nil }
	}
	if cfg.MapArgs == nil {
		cfg.MapArgs = func(args []ledger.Value) []ledger.Value { return args }
	}
	if cfg.DefaultWitnesses == nil {
		cfg.DefaultWitnesses = func() circuit.WitnessTable { return nil }
	}
	if cfg.DecodeLedger == nil {
		cfg.DecodeLedger = func(tree *ledger.StateTree) (any, error) { return tree, nil }
	}
	return &Factory{cfg: cfg}
}

// Option customizes one deployment.
type Option func(*deployment)

type deployment struct {
	address    ledger.Address
	hasAddress bool
	private    any
	hasPrivate bool
	identity   ledger.Address
	witnesses  circuit.WitnessTable
}

// WithAddress binds the instance to a fixed contract address instead of a
// derived one.
func WithAddress(addr ledger.Address) Option {
	return func(d *deployment) {
		d.address = addr
		d.hasAddress = true
	}
}

// WithPrivateState seeds the constructor with an explicit private state
// instead of the config default.
func WithPrivateState(private any) Option {
	return func(d *deployment) {
		d.private = private
		d.hasPrivate = true
	}
}

// WithIdentity sets the local identity the constructor observes as its
// deployer. Defaults to the zero address.
func WithIdentity(id ledger.Address) Option {
	return func(d *deployment) {
		d.identity = id
	}
}

// WithWitnesses deploys against an explicit witness table instead of the
// config default.
func WithWitnesses(table circuit.WitnessTable) Option {
	return func(d *deployment) {
		d.witnesses = table
	}
}

// Deploy runs the full construction sequence: witness table resolution,
// module construction, initializer invocation with mapped arguments, context
// seeding, and address binding. If the module initializer rejects the
// arguments no instance is produced and nothing is retained.
func (f *Factory) Deploy(args []ledger.Value, opts ...Option) (*Base, error) {
	if f.cfg.Module == nil {
		return nil, errors.New("deploy: config has no module factory")
	}

	var d deployment
	for _, opt := range opts {
		opt(&d)
	}

	witnesses := d.witnesses
	if witnesses == nil {
		witnesses = f.cfg.DefaultWitnesses()
	}
	owned := circuit.MergeWitnesses(nil, witnesses)

	module, err := f.cfg.Module(owned)
	if err != nil {
		return nil, fmt.Errorf("build module: %w", err)
	}

	private := d.private
	if !d.hasPrivate {
		private = f.cfg.DefaultPrivate()
	}

	cctx := circuit.ConstructorContext{
		Private: private,
		Local:   circuit.NewLocalState(d.identity),
	}

	init, err := module.InitialState(cctx, f.cfg.MapArgs(args)...)
	if err != nil {
		return nil, fmt.Errorf("initial state: %w", err)
	}

	address := d.address
	if !d.hasAddress {
		address = f.nextAddress(args)
	}

	ctx := circuit.Context{
		Original: init.State,
		Private:  init.Private,
		Local:    init.Local,
		Tx:       circuit.TxContext{State: init.State, Address: address},
	}

	return &Base{
		cfg:       f.cfg,
		manager:   NewContextManager(ctx),
		address:   address,
		module:    module,
		witnesses: owned,
	}, nil
}

// nextAddress derives a deterministic instance address from the deploy
// ordinal and the constructor arguments. Two factories fed the same deploy
// sequence derive the same addresses, which golden-file tests rely on.
func (f *Factory) nextAddress(args []ledger.Value) ledger.Address {
	f.seq++
	payload := binary.AppendUvarint(nil, f.seq)
	payload = append(payload, ledger.Encode(ledger.List(args))...)
	return ledger.Address(ledger.DomainHash(addressDomain, payload))
}
