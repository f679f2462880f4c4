package vector

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

func newHashing(t *testing.T, dims int, opts ...HashingOption) *Hashing {
	t.Helper()
	h, err := NewHashing(dims, opts...)
	if err != nil {
		t.Fatalf("NewHashing(%d): %v", dims, err)
	}
	return h
}

func TestNewHashing_InvalidDimensions(t *testing.T) {
	for _, dims := range []int{0, -1} {
		if _, err := NewHashing(dims); err == nil {
			t.Errorf("expected error for dims=%d", dims)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Cargador Tesla", []string{"cargador", "tesla"}},
		{"a,b.c-d/e_f g", []string{"a", "b", "c", "d", "e", "f", "g"}},
		{"  --//__..,,  ", nil},
		{"", nil},
		{"EV-Fast 22kW", []string{"ev", "fast", "22kw"}},
	}
	for _, tc := range tests {
		got := Tokenize(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestEmbed_FixedLength(t *testing.T) {
	for _, mapping := range []BucketMapping{BucketUniform, BucketLegacy} {
		for _, dims := range []int{1, 7, 64, 256} {
			h := newHashing(t, dims, WithBucketMapping(mapping))
			for _, text := range []string{"", "one", strings.Repeat("word other thing ", 500)} {
				if got := len(h.Embed(text)); got != dims {
					t.Errorf("mapping=%s dims=%d: len=%d", mapping, dims, got)
				}
			}
		}
	}
}

func TestEmbed_UnitNorm(t *testing.T) {
	h := newHashing(t, 256)
	texts := []string{
		"Cargador Automático Tesla 1516",
		"carga rápida",
		"x",
		"repeat repeat repeat repeat",
		"Mixed, punctuation. And-hyphens/slashes_underscores",
	}
	for _, text := range texts {
		n := h.Embed(text).Norm()
		if math.Abs(n-1) > 1e-4 {
			t.Errorf("norm(Embed(%q)) = %f, want ~1", text, n)
		}
	}
}

func TestEmbed_NoTokensYieldsZeroVector(t *testing.T) {
	h := newHashing(t, 32)
	for _, v := range h.Embed(" ,.-/_ ") {
		if v != 0 {
			t.Fatalf("expected zero vector, got component %f", v)
		}
	}
}

func TestEmbed_Deterministic(t *testing.T) {
	a := newHashing(t, 64)
	b := newHashing(t, 64)
	text := "Cargador EV 22kW compatible Tesla"

	if !reflect.DeepEqual(a.Embed(text), a.Embed(text)) {
		t.Error("same instance produced different vectors")
	}
	if !reflect.DeepEqual(a.Embed(text), b.Embed(text)) {
		t.Error("equal instances produced different vectors")
	}
}

func TestEmbed_CaseAndDelimiterInsensitive(t *testing.T) {
	h := newHashing(t, 64)
	if !reflect.DeepEqual(h.Embed("Cargador Tesla"), h.Embed("cargador-TESLA")) {
		t.Error("expected identical vectors after lowercasing and splitting")
	}
}

func TestEmbed_TermFrequency(t *testing.T) {
	h := newHashing(t, 64)
	v := h.Embed("tesla tesla")
	idx := h.bucket("tesla")
	if math.Abs(float64(v[idx])-1) > 1e-4 {
		t.Errorf("expected the single populated bucket to be ~1, got %f", v[idx])
	}
}

func TestBucket_InRange(t *testing.T) {
	for _, mapping := range []BucketMapping{BucketUniform, BucketLegacy} {
		for _, dims := range []int{1, 3, 64, 100, 256} {
			h := newHashing(t, dims, WithBucketMapping(mapping))
			for _, tok := range []string{"a", "tesla", "cargador", "1516", "ñandú"} {
				b := h.bucket(tok)
				if b < 0 || b >= dims {
					t.Errorf("mapping=%s dims=%d token=%q: bucket %d out of range", mapping, dims, tok, b)
				}
			}
		}
	}
}

func TestBucket_PowerOfTwoMappingsAgree(t *testing.T) {
	uniform := newHashing(t, 256)
	legacy := newHashing(t, 256, WithBucketMapping(BucketLegacy))
	for _, tok := range []string{"cargador", "tesla", "carga", "rápida", "1516"} {
		if uniform.bucket(tok) != legacy.bucket(tok) {
			t.Errorf("token %q: uniform=%d legacy=%d", tok, uniform.bucket(tok), legacy.bucket(tok))
		}
	}
}

func TestParseBucketMapping(t *testing.T) {
	tests := []struct {
		in      string
		want    BucketMapping
		wantErr bool
	}{
		{"", BucketUniform, false},
		{"uniform", BucketUniform, false},
		{"legacy", BucketLegacy, false},
		{"modulo", "", true},
	}
	for _, tc := range tests {
		got, err := ParseBucketMapping(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseBucketMapping(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseBucketMapping(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
