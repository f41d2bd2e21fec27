package errcode

import (
	"errors"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"peripherals_taken":   PeripheralsTaken,
		"handle_moved":        HandleMoved,
		"empty_cell":          EmptyCell,
		"aliased_borrow":      AliasedBorrow,
		"no_critical_section": NoCriticalSection,
		"unknown_source":      UnknownSource,
		"source_armed":        SourceArmed,
		"not_populated":       NotPopulated,
		"invalid_config":      InvalidConfig,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestWrapCarriesCode(t *testing.T) {
	err := Wrap(NotPopulated, "arm", "cell gpio empty")
	if got := Of(err); got != NotPopulated {
		t.Fatalf("Of = %q, want %q", got, NotPopulated)
	}
	if !errors.Is(err, NotPopulated) {
		t.Fatal("errors.Is should match the wrapped code")
	}
	if errors.Is(err, EmptyCell) {
		t.Fatal("errors.Is matched the wrong code")
	}
	if got, want := err.Error(), "arm: not_populated: cell gpio empty"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestOfDefaults(t *testing.T) {
	if Of(nil) != OK {
		t.Fatal("nil should map to OK")
	}
	if Of(errors.New("boom")) != Error {
		t.Fatal("plain errors should map to Error")
	}
	if Of(EmptyCell) != EmptyCell {
		t.Fatal("bare Code should map to itself")
	}
}
