// Package config holds environment-driven tunables for the VM, parsed once
// at process startup.
package config

import "github.com/caarlos0/env/v6"

// VMLimits bounds the resources a single VM run may use, per the language's
// resource-bound rules. All four are overridable via environment variables
// so a deployment can raise them without a rebuild; the defaults match the
// recommended values.
type VMLimits struct {
	// MaxStack is the largest number of values the value stack may hold at
	// once. Default follows the recommended 256 * max-frames sizing.
	MaxStack int `env:"WISP_MAX_STACK" envDefault:"16384"`

	// MaxFrames is the largest number of nested call frames allowed before
	// a call raises "Stack overflow.".
	MaxFrames int `env:"WISP_MAX_FRAMES" envDefault:"64"`

	// MaxConstants is the largest number of distinct constants one function's
	// chunk may hold.
	MaxConstants int `env:"WISP_MAX_CONSTANTS" envDefault:"256"`

	// MaxLocals is the largest number of local variables (including
	// parameters) one function body may declare.
	MaxLocals int `env:"WISP_MAX_LOCALS" envDefault:"256"`
}

// Load parses VMLimits from the process environment, falling back to the
// struct tag defaults for anything unset.
func Load() (VMLimits, error) {
	var lim VMLimits
	if err := env.Parse(&lim); err != nil {
		return VMLimits{}, err
	}
	return lim, nil
}
