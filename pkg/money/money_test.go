package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRound_HalfToEven(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.2345675", "1.234568"},
		{"1.0000005", "1.0"},
		{"1.0000015", "1.000002"},
	}
	for _, tc := range cases {
		in, _ := decimal.NewFromString(tc.in)
		want, _ := decimal.NewFromString(tc.want)
		if got := Round(in); !got.Equal(want) {
			t.Errorf("Round(%s) = %s, want %s", tc.in, got.String(), want.String())
		}
	}
}

func TestFromFloat_RoundTripsToStoragePrecision(t *testing.T) {
	d := FromFloat(19.999999999)
	if places := -d.Exponent(); places > StoragePlaces {
		t.Errorf("expected at most %d decimal places, got %d", StoragePlaces, places)
	}
}

func TestPerShare_ZeroSharesReturnsZero(t *testing.T) {
	total := decimal.NewFromInt(1000)
	if got := PerShare(total, 0); got != 0 {
		t.Errorf("expected 0 for zero shares, got %v", got)
	}
}

func TestPerShare_DividesCorrectly(t *testing.T) {
	total := decimal.NewFromInt(1000)
	if got := PerShare(total, 4); got != 250 {
		t.Errorf("expected 250, got %v", got)
	}
}
