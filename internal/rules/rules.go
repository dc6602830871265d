// Package rules wires the built-in rule providers into a registry. Each
// provider lives in its own package and declares its phase and ordering
// constraints statically.
package rules

import (
	"github.com/jonathanvila/windup/internal/provider"
	"github.com/jonathanvila/windup/internal/rules/archives"
	"github.com/jonathanvila/windup/internal/rules/discovery"
	"github.com/jonathanvila/windup/internal/rules/javasrc"
	"github.com/jonathanvila/windup/internal/rules/reporting"
	"github.com/jonathanvila/windup/internal/rules/xmlres"
)

// RegisterBuiltins installs all of the built-in rule providers into the
// provided registry.
func RegisterBuiltins(reg *provider.Registry) {
	if reg == nil {
		return
	}
	discovery.Register(reg)
	archives.Register(reg)
	javasrc.Register(reg)
	xmlres.Register(reg)
	reporting.Register(reg)
}
