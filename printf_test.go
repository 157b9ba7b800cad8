package obstack

import (
	"fmt"
	"strings"
	"testing"
)

func TestPrintf(t *testing.T) {
	o := NewObstack(0)
	n := o.Printf("sym_%d[%s]", 42, "f64")
	want := "sym_42[f64]"
	if n != len(want) {
		t.Errorf("Printf length = %d, want %d", n, len(want))
	}
	m := o.Finish()
	if got := string(object(m, len(want))); got != want {
		t.Errorf("Printf object = %q, want %q", got, want)
	}
}

func TestPrintfAppendsToPending(t *testing.T) {
	o := NewObstack(0)
	o.GrowString("prefix:")
	o.Printf("%04x", 0xBEEF)
	m := o.Finish()
	if got := string(object(m, 11)); got != "prefix:beef" {
		t.Errorf("object = %q, want %q", got, "prefix:beef")
	}
}

func TestPrintfLongOutputNotTruncated(t *testing.T) {
	o := NewObstack(0)
	long := strings.Repeat("z", 5000)
	n := o.Printf("%s|%s", long, long)
	if n != 10001 {
		t.Fatalf("Printf length = %d, want 10001", n)
	}
	m := o.Finish()
	got := string(object(m, n))
	if got != fmt.Sprintf("%s|%s", long, long) {
		t.Error("long Printf output damaged")
	}
}
