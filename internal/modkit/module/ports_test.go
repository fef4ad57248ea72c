package module_test

import (
	"testing"

	"pvcreek/internal/modkit/module"
	"pvcreek/internal/platform/testkit"
)

type Greeter interface{ Greet() string }

type english struct{}

func (english) Greet() string { return "hello" }

type Counter interface{ Count() int }

type bundle struct {
	Greeter Greeter
	hidden  Counter
}

type mod struct{ ports any }

func (m mod) Ports() any   { return m.ports }
func (m mod) Name() string { return "fake" }

func TestPortsOf(t *testing.T) {
	m := mod{ports: bundle{Greeter: english{}}}
	g, ok := module.PortsOf[Greeter](m)
	if !ok || g.Greet() != "hello" {
		t.Fatalf("PortsOf[Greeter] = %v, %v", g, ok)
	}
	if _, ok := module.PortsOf[Counter](m); ok {
		t.Fatalf("unexported field should not be visible")
	}

	direct := mod{ports: english{}}
	if g := module.MustPortsOf[Greeter](direct); g.Greet() != "hello" {
		t.Fatalf("MustPortsOf direct = %v", g)
	}

	if _, ok := module.PortsOf[Greeter](mod{}); ok {
		t.Fatalf("nil ports should report false")
	}
	testkit.MustPanic(t, func() { module.MustPortsOf[Counter](m) })
}
