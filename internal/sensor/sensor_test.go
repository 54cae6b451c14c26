package sensor

import (
	"errors"
	"testing"
)

func TestScale(t *testing.T) {
	tests := []struct {
		raw  int16
		want int
	}{
		{-200, 0},
		{0, 0},
		// 1.71V on a 5V 10-bit scale is ~350.
		{13680, 350},
		// 4.096V full scale.
		{32767, 838},
	}
	for _, tt := range tests {
		if got := Scale(tt.raw); got != tt.want {
			t.Errorf("Scale(%d): got %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestFakeReaderSequence(t *testing.T) {
	f := NewFakeReader(100, 400, 200)

	want := []int{100, 400, 200, 200}
	for i, w := range want {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("read %d: got %d, want %d", i, got, w)
		}
	}
	if f.Reads != 4 {
		t.Errorf("Reads: got %d, want 4", f.Reads)
	}
}

func TestFakeReaderErrors(t *testing.T) {
	if _, err := NewFakeReader().Read(); err == nil {
		t.Error("expected error with no readings")
	}

	f := NewFakeReader(1)
	f.ReadError = errors.New("adc fault")
	if _, err := f.Read(); err == nil || err.Error() != "adc fault" {
		t.Errorf("unexpected error: %v", err)
	}

	f.Close()
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}
