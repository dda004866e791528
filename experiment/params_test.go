package experiment

import (
	"math"
	"strings"
	"testing"

	expErrors "github.com/maxpv/expman/pkg/errors"
)

func TestCanonicalBytesDeterminism(t *testing.T) {
	group := map[string]any{
		"batch_size":    128,
		"epochs":        12,
		"learning-rate": 0.008,
		"optimizer": map[string]any{
			"name":  "adam",
			"betas": []any{0.9, 0.999},
		},
	}

	first, err := canonicalBytes(group)
	if err != nil {
		t.Fatalf("canonicalBytes() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := canonicalBytes(group)
		if err != nil {
			t.Fatalf("canonicalBytes() error = %v", err)
		}
		if string(first) != string(again) {
			t.Fatalf("canonicalBytes() not deterministic: %q vs %q", first, again)
		}
	}
}

func TestCanonicalBytesKeyOrderIndependence(t *testing.T) {
	// Built in different insertion orders; must render identically.
	g1 := map[string]any{}
	g1["width"] = 128
	g1["height"] = 128
	g1["channels"] = 3

	g2 := map[string]any{}
	g2["channels"] = 3
	g2["height"] = 128
	g2["width"] = 128

	b1, err := canonicalBytes(g1)
	if err != nil {
		t.Fatalf("canonicalBytes(g1) error = %v", err)
	}
	b2, err := canonicalBytes(g2)
	if err != nil {
		t.Fatalf("canonicalBytes(g2) error = %v", err)
	}
	if string(b1) != string(b2) {
		t.Errorf("canonical form depends on insertion order: %q vs %q", b1, b2)
	}
}

func TestCanonicalBytesTypeDisambiguation(t *testing.T) {
	render := func(t *testing.T, v any) string {
		t.Helper()
		b, err := canonicalBytes(map[string]any{"k": v})
		if err != nil {
			t.Fatalf("canonicalBytes() error = %v", err)
		}
		return string(b)
	}

	tuple := render(t, Tuple{3, 3})
	seq := render(t, []any{3, 3})
	str := render(t, "3,3")

	if tuple == seq {
		t.Errorf("tuple and sequence render identically: %q", tuple)
	}
	if tuple == str || seq == str {
		t.Errorf("string %q collides with tuple %q or sequence %q", str, tuple, seq)
	}
}

func TestCanonicalBytesFloatNormalization(t *testing.T) {
	tests := []struct {
		name string
		a    any
		b    any
		same bool
	}{
		{name: "integral float equals int", a: float64(128), b: 128, same: true},
		{name: "fractional float differs from int", a: 0.5, b: 0, same: false},
		{name: "float32 and float64 agree", a: float32(2), b: float64(2), same: true},
		{name: "int and uint agree", a: int(7), b: uint(7), same: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ba, err := canonicalBytes(map[string]any{"v": tt.a})
			if err != nil {
				t.Fatalf("canonicalBytes(a) error = %v", err)
			}
			bb, err := canonicalBytes(map[string]any{"v": tt.b})
			if err != nil {
				t.Fatalf("canonicalBytes(b) error = %v", err)
			}
			if (string(ba) == string(bb)) != tt.same {
				t.Errorf("canonical(%v) == canonical(%v) is %v, want %v", tt.a, tt.b, !tt.same, tt.same)
			}
		})
	}
}

func TestCanonicalBytesTypedSlices(t *testing.T) {
	// Typed convenience slices render as sequences, same as []any.
	typed, err := canonicalBytes(map[string]any{"v": []int{1, 2, 3}})
	if err != nil {
		t.Fatalf("canonicalBytes([]int) error = %v", err)
	}
	boxed, err := canonicalBytes(map[string]any{"v": []any{1, 2, 3}})
	if err != nil {
		t.Fatalf("canonicalBytes([]any) error = %v", err)
	}
	if string(typed) != string(boxed) {
		t.Errorf("[]int renders %q, []any renders %q", typed, boxed)
	}
}

func TestCanonicalBytesUnsupportedKinds(t *testing.T) {
	tests := []struct {
		name     string
		group    map[string]any
		wantPath string
	}{
		{
			name:     "function value",
			group:    map[string]any{"init": func() {}},
			wantPath: "init",
		},
		{
			name:     "NaN",
			group:    map[string]any{"rate": math.NaN()},
			wantPath: "rate",
		},
		{
			name:     "positive infinity",
			group:    map[string]any{"limit": math.Inf(1)},
			wantPath: "limit",
		},
		{
			name: "nested unsupported value",
			group: map[string]any{
				"optimizer": map[string]any{
					"schedule": []any{1, math.NaN()},
				},
			},
			wantPath: "optimizer.schedule[1]",
		},
		{
			name:     "struct value",
			group:    map[string]any{"when": struct{ A int }{A: 1}},
			wantPath: "when",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := canonicalBytes(tt.group)
			if err == nil {
				t.Fatal("canonicalBytes() expected error, got nil")
			}

			var kindErr *expErrors.UnsupportedValueKindError
			if !expErrors.As(err, &kindErr) {
				t.Fatalf("error %v is not UnsupportedValueKindError", err)
			}
			if kindErr.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", kindErr.Path, tt.wantPath)
			}
		})
	}
}

func TestJSONSnapshotStable(t *testing.T) {
	params := map[string]any{
		"training":   map[string]any{"epochs": 12, "batch_size": 128},
		"processing": map[string]any{"width": 128},
	}

	first, err := JSONSnapshot(params)
	if err != nil {
		t.Fatalf("JSONSnapshot() error = %v", err)
	}
	second, err := JSONSnapshot(params)
	if err != nil {
		t.Fatalf("JSONSnapshot() error = %v", err)
	}
	if string(first) != string(second) {
		t.Error("JSONSnapshot() output is not stable")
	}

	// encoding/json sorts keys: batch_size before epochs.
	out := string(first)
	if strings.Index(out, "batch_size") > strings.Index(out, "epochs") {
		t.Errorf("snapshot keys not sorted:\n%s", out)
	}
}
