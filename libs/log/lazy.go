package log

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
)

type LazySprintf struct {
	format string
	args   []any
}

// NewLazySprintf defers fmt.Sprintf until the Stringer interface is invoked.
// This is particularly useful for avoiding calling Sprintf when debugging is not
// active.
func NewLazySprintf(format string, args ...any) *LazySprintf {
	return &LazySprintf{format, args}
}

func (l *LazySprintf) String() string {
	return fmt.Sprintf(l.format, l.args...)
}

// LogValue implements slog.LogValuer so handlers format the value only when
// the event is emitted.
func (l *LazySprintf) LogValue() slog.Value {
	return slog.StringValue(l.String())
}

// LazyHex is a wrapper around a byte slice that defers hex encoding until the
// Stringer interface is invoked. Digests and signatures are logged this way.
type LazyHex struct {
	inner []byte
}

// NewLazyHex defers encoding b until the Stringer interface is invoked.
func NewLazyHex(b []byte) *LazyHex {
	return &LazyHex{b}
}

func (l *LazyHex) String() string {
	return strings.ToUpper(hex.EncodeToString(l.inner))
}

func (l *LazyHex) LogValue() slog.Value {
	return slog.StringValue(l.String())
}
