// Package module defines the minimal contract for a modkit module
package module

// Module is what every service module exposes: a name and its ports
// kept apart from modkit so ports lookups do not pull in http wiring
type Module interface {
	Ports() any
	Name() string
}
