// Package logx is a small line logger that avoids fmt so it stays cheap on
// MCU builds. Lines look like:
//
//	Info: armed source=1 name=edge
//
// Never log from interrupt context or inside a critical section; the sink may
// block (UART) for the length of the line.
package logx

import (
	"io"
	"sync"

	"isrcell-go/x/conv"
)

type Level uint8

const (
	LevelInfo Level = iota
	LevelWarn
	LevelFatal
)

func (l Level) prefix() string {
	switch l {
	case LevelWarn:
		return "Warn:"
	case LevelFatal:
		return "Fatal:"
	default:
		return "Info:"
	}
}

type fieldKind uint8

const (
	kindStr fieldKind = iota
	kindUint
	kindHex
)

// Field is one key=value pair.
type Field struct {
	Key  string
	kind fieldKind
	s    string
	u    uint64
}

func Str(k, v string) Field         { return Field{Key: k, kind: kindStr, s: v} }
func Uint(k string, v uint64) Field { return Field{Key: k, kind: kindUint, u: v} }
func Hex(k string, v uint32) Field  { return Field{Key: k, kind: kindHex, u: uint64(v)} }
func Bool(k string, v bool) Field {
	if v {
		return Str(k, "true")
	}
	return Str(k, "false")
}
func Err(err error) Field {
	if err == nil {
		return Str("err", "nil")
	}
	return Str("err", err.Error())
}

// Logger writes one line per call. A nil *Logger discards everything.
type Logger struct {
	mu   sync.Mutex
	w    io.Writer
	line []byte
}

func New(w io.Writer) *Logger {
	return &Logger{w: w, line: make([]byte, 0, 128)}
}

func (l *Logger) Info(msg string, f ...Field)  { l.log(LevelInfo, msg, f) }
func (l *Logger) Warn(msg string, f ...Field)  { l.log(LevelWarn, msg, f) }
func (l *Logger) Fatal(msg string, f ...Field) { l.log(LevelFatal, msg, f) }

func (l *Logger) log(lv Level, msg string, fields []Field) {
	if l == nil || l.w == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	b := append(l.line[:0], lv.prefix()...)
	b = append(b, ' ')
	b = append(b, msg...)
	for _, f := range fields {
		b = append(b, ' ')
		b = append(b, f.Key...)
		b = append(b, '=')
		switch f.kind {
		case kindUint:
			b = conv.AppendUint(b, f.u)
		case kindHex:
			b = append(b, "0x"...)
			b = conv.AppendHex(b, uint32(f.u), 1)
		default:
			b = append(b, f.s...)
		}
	}
	b = append(b, '\n')
	l.line = b
	_, _ = l.w.Write(b)
}
