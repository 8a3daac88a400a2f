package main

import (
	"testing"
)

func TestMapFlagsAreIndependent(t *testing.T) {
	t.Cleanup(func() {
		validateMapFlags = nil
		importMapFlags = nil
	})

	if err := validateCmd.Flags().Set("map", "Columna A=display_name"); err != nil {
		t.Fatalf("Failed to set validate --map: %v", err)
	}

	if len(validateMapFlags) != 1 || validateMapFlags[0] != "Columna A=display_name" {
		t.Errorf("validate --map = %v", validateMapFlags)
	}
	if len(importMapFlags) != 0 {
		t.Errorf("import --map picked up validate's value: %v", importMapFlags)
	}

	if err := importCmd.Flags().Set("map", "Columna B=tax_id"); err != nil {
		t.Fatalf("Failed to set import --map: %v", err)
	}
	if len(validateMapFlags) != 1 {
		t.Errorf("validate --map picked up import's value: %v", validateMapFlags)
	}
}
