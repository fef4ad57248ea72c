package module

import "reflect"

// PortsOf finds a port of type T on m: Ports() itself, or the first exported field of a Ports struct
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if t, ok := p.(T); ok {
		return t, true
	}
	v := reflect.ValueOf(p)
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return zero, false
	}
	for i := range v.NumField() {
		f := v.Field(i)
		if !f.CanInterface() {
			continue
		}
		if t, ok := f.Interface().(T); ok {
			return t, true
		}
	}
	return zero, false
}

// MustPortsOf is PortsOf for required ports; a missing one panics
func MustPortsOf[T any](m Module) T {
	t, ok := PortsOf[T](m)
	if !ok {
		panic("module: " + m.Name() + " has no " + reflect.TypeFor[T]().String() + " port")
	}
	return t
}
