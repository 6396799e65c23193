package apc

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/davecgh/go-spew/spew"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Render fetches the slot value and formats it for display.
// Scalars (booleans, numbers, strings) render as their textual form;
// anything else renders as an indented structural dump.
func (e *Entry[V]) Render(ctx context.Context) (string, error) {
	v, err := e.Get(ctx)
	if err != nil {
		return "", err
	}
	return Format(v), nil
}

// String implements fmt.Stringer. It renders like Render and returns an
// empty string when the value cannot be fetched.
func (e *Entry[V]) String() string {
	ctx := context.Background()

	s, err := e.Render(ctx)
	if err != nil {
		e.log.DebugContext(ctx, "cache value not rendered", slog.Any("error", err))
		return ""
	}
	return s
}

// Format renders v the way Render does: scalars as text, anything else as
// a structural dump. A nil value renders as "".
func Format(v any) string {
	if v == nil {
		return ""
	}
	if isScalar(reflect.ValueOf(v).Kind()) {
		return fmt.Sprint(v)
	}
	return dumper.Sdump(v)
}

func isScalar(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	}
	return false
}
