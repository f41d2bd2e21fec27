package logx

import (
	"bytes"
	"errors"
	"testing"
)

func TestLineFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Info("armed", Uint("source", 1), Str("name", "edge"))
	l.Warn("cell replaced", Str("cell", "gpio"))
	l.Fatal("halt", Err(errors.New("empty_cell")), Hex("adc", 0x300), Bool("led", true))

	want := "Info: armed source=1 name=edge\n" +
		"Warn: cell replaced cell=gpio\n" +
		"Fatal: halt err=empty_cell adc=0x300 led=true\n"
	if got := buf.String(); got != want {
		t.Fatalf("log output:\n%q\nwant:\n%q", got, want)
	}
}

func TestNilLoggerDiscards(t *testing.T) {
	var l *Logger
	l.Info("nothing") // must not panic
}
