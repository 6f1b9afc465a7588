package utils

import "testing"

func TestGenerateActivationID(t *testing.T) {
	a := GenerateActivationID()
	b := GenerateActivationID()
	if a == "" || b == "" {
		t.Fatal("expected non-empty activation IDs")
	}
	if a == b {
		t.Fatalf("expected unique activation IDs, got %s twice", a)
	}
}
