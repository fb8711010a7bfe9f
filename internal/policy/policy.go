// Package policy holds the resolver's configurable knobs, loadable from a
// TOML file. The required-alias boundary is deliberately a policy, not a
// hard-coded assumption: the source proposal states per-unit alias
// visibility and whole-program namespace consistency explicitly, but
// leaves the cross-unit story for required aliases open.
package policy

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// RequiredAliasScope selects how far required-alias agreement is checked.
type RequiredAliasScope string

const (
	// ScopeUnit: alias definitions are a per-translation-unit concern only.
	ScopeUnit RequiredAliasScope = "unit"
	// ScopeProgram: additionally require identically named alias
	// definitions in different units to agree at whole-program time.
	ScopeProgram RequiredAliasScope = "program"
)

// ErrBadScope indicates an unrecognized required_alias_scope value.
var ErrBadScope = errors.New("required_alias_scope must be \"unit\" or \"program\"")

// Policy configures a whole-program resolution run.
type Policy struct {
	RequiredAliasScope RequiredAliasScope `toml:"required_alias_scope"`
	MaxDiagnostics     int                `toml:"max_diagnostics"`
	Jobs               int                `toml:"jobs"`
}

// Default returns the policy used when no file is given.
func Default() Policy {
	return Policy{
		RequiredAliasScope: ScopeUnit,
		MaxDiagnostics:     100,
		Jobs:               0, // 0 = one worker per CPU
	}
}

// Load reads a policy file, filling unset fields from Default.
func Load(path string) (Policy, error) {
	p := Default()
	meta, err := toml.DecodeFile(path, &p)
	if err != nil {
		return Policy{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("required_alias_scope") {
		p.RequiredAliasScope = ScopeUnit
	}
	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Validate rejects out-of-range values.
func (p Policy) Validate() error {
	switch p.RequiredAliasScope {
	case ScopeUnit, ScopeProgram:
	default:
		return ErrBadScope
	}
	if p.MaxDiagnostics < 0 {
		return errors.New("max_diagnostics must be non-negative")
	}
	if p.Jobs < 0 {
		return errors.New("jobs must be non-negative")
	}
	return nil
}
