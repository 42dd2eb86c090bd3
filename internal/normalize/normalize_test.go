package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapseSpaces(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  alice   smith ", "alice smith"},
		{"alice smith", "alice smith"},
		{"one\t two\n three", "one two three"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CollapseSpaces(tt.in), "input %q", tt.in)
	}
}

func TestCollapseSpaces_Idempotent(t *testing.T) {
	once := CollapseSpaces("  a   b  c ")
	assert.Equal(t, once, CollapseSpaces(once))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Alice Smith", Title("alice smith"))
	assert.Equal(t, "Gaming Laptop", Title("gaming LAPTOP"))
	assert.Equal(t, "", Title(""))
	// already title-cased input is unchanged
	assert.Equal(t, "New Delhi", Title("New Delhi"))
}

func TestCapFirst(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"south", "South"},
		{"SOUTH", "South"},
		{"south delhi", "South delhi"},
		{"s", "S"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CapFirst(tt.in), "input %q", tt.in)
	}
}

func TestCapFirst_Idempotent(t *testing.T) {
	once := CapFirst("nORTH east")
	assert.Equal(t, once, CapFirst(once))
}

func TestPrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"150", 150},
		{"1,299.50", 1299.5},
		{"₹900", 900},
		{"$45.00", 45},
		{" ₹1,050 ", 1050},
		{"", 0},
		{"abc", 0},
		{"12x", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Price(tt.in), "input %q", tt.in)
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "1299.5", FormatPrice(1299.5))
	assert.Equal(t, "900", FormatPrice(900))
	assert.Equal(t, "0", FormatPrice(0))
}

func TestPriceRoundTrip_Idempotent(t *testing.T) {
	// Normalizing an already-normalized price text changes nothing.
	for _, in := range []string{"₹1,299.50", "45", "0"} {
		once := FormatPrice(Price(in))
		assert.Equal(t, once, FormatPrice(Price(once)), "input %q", in)
	}
}
