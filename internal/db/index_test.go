package db

import (
	"strings"
	"testing"
)

func TestIndexDefinition_CreateArgs(t *testing.T) {
	def := NewIndex("manara:venues:idx", "manara:venue:").
		Tag("category", "price_range").
		Numeric("rating").
		Vector(FieldVector, 384, 16, 200)

	args, err := def.CreateArgs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := strings.Join(args, " ")
	want := "manara:venues:idx ON HASH PREFIX 1 manara:venue: SCHEMA " +
		"category TAG price_range TAG rating NUMERIC " +
		"__vector VECTOR HNSW 10 TYPE FLOAT32 DIM 384 DISTANCE_METRIC COSINE M 16 EF_CONSTRUCTION 200"
	if got != want {
		t.Errorf("args mismatch:\ngot:  %s\nwant: %s", got, want)
	}
}

func TestIndexDefinition_VectorDefaultsOmitted(t *testing.T) {
	args, err := NewIndex("idx", "v:").Vector("vec", 8, 0, 0).CreateArgs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(strings.Join(args, " "), "EF_CONSTRUCTION") {
		t.Errorf("unexpected EF_CONSTRUCTION in %v", args)
	}
	if args[len(args)-7] != "6" {
		t.Errorf("attribute count = %s, want 6", args[len(args)-7])
	}
}

func TestIndexDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		def     *IndexDefinition
		wantErr string
	}{
		{"bad name", NewIndex("bad name", "p:").Vector("v", 4, 0, 0), "must match"},
		{"no prefix", NewIndex("idx", "").Vector("v", 4, 0, 0), "prefix is required"},
		{"no fields", NewIndex("idx", "p:"), "at least one field"},
		{"zero dim", NewIndex("idx", "p:").Vector("v", 0, 0, 0), "positive DIM"},
		{"no vector", NewIndex("idx", "p:").Tag("category"), "exactly one vector"},
		{"duplicate", NewIndex("idx", "p:").Tag("a", "a").Vector("v", 4, 0, 0), "duplicate field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	for _, s := range []string{"idx", "manara:venues:idx", "a_b-c"} {
		if !IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = false", s)
		}
	}
	for _, s := range []string{"", "a b", "idx*"} {
		if IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = true", s)
		}
	}
}
