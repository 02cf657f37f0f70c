package proxyfix

import (
	"fmt"
	"reflect"
)

func (c *config) validate() error {
	if c.trustedProxyCount < 1 {
		return fmt.Errorf("trustedProxyCount must be >= 1, got %d", c.trustedProxyCount)
	}
	if !c.mode.valid() {
		return fmt.Errorf("invalid mode %d (must be ModePermissive=1 or ModeStrict=2)", c.mode)
	}
	if isNilInterface(c.logger) {
		return fmt.Errorf("logger cannot be nil")
	}
	if isNilInterface(c.metrics) {
		return fmt.Errorf("metrics cannot be nil")
	}
	if c.errorHandler == nil {
		return fmt.Errorf("error handler cannot be nil")
	}
	return nil
}

func isNilInterface(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
