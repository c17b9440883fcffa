package pagination

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   Params
		def  int
		want Params
	}{
		{name: "defaults", in: Params{}, def: 10, want: Params{Page: 1, Limit: 10}},
		{name: "negative", in: Params{Page: -3, Limit: -1}, def: 12, want: Params{Page: 1, Limit: 12}},
		{name: "clamped", in: Params{Page: 2, Limit: 500}, def: 10, want: Params{Page: 2, Limit: MaxLimit}},
		{name: "kept", in: Params{Page: 4, Limit: 25}, def: 10, want: Params{Page: 4, Limit: 25}},
		{name: "huge page", in: Params{Page: math.MaxInt, Limit: 100}, def: 10, want: Params{Page: MaxPage, Limit: 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in, tc.def); got != tc.want {
				t.Fatalf("expected %+v got %+v", tc.want, got)
			}
		})
	}
}

func TestOffsetAndPages(t *testing.T) {
	if off := (Params{Page: 3, Limit: 10}).Offset(); off != 20 {
		t.Fatalf("expected offset 20, got %d", off)
	}
	if off := (Params{Page: 1, Limit: 10}).Offset(); off != 0 {
		t.Fatalf("expected offset 0, got %d", off)
	}
	if pages := Pages(21, 10); pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}
	if pages := Pages(0, 10); pages != 0 {
		t.Fatalf("expected 0 pages for empty set, got %d", pages)
	}
}

func TestOffsetStaysPositiveForHugePages(t *testing.T) {
	p := Normalize(Params{Page: math.MaxInt, Limit: 500}, 10)
	off := p.Offset()
	if off <= 0 || off > math.MaxInt32 {
		t.Fatalf("expected positive int32 offset, got %d", off)
	}
}
