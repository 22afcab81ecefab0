package buildinfo

import (
	"runtime/debug"
	"testing"
)

func TestBinaryVersionDefault(t *testing.T) {
	if BinaryVersion != "dev" {
		t.Errorf("Expected BinaryVersion to be 'dev', got '%s'", BinaryVersion)
	}
}

func TestModuleVersionMatchesBuildInfo(t *testing.T) {
	expected := ""
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		expected = info.Main.Version
	}
	if actual := ModuleVersion(); actual != expected {
		t.Errorf("ModuleVersion() = '%s', expected '%s'", actual, expected)
	}
}

func TestVersionPrefersStampedValue(t *testing.T) {
	original := BinaryVersion
	defer func() { BinaryVersion = original }()

	BinaryVersion = "v1.4.0"
	if got := Version(); got != "v1.4.0" {
		t.Errorf("Version() = %q, expected stamped v1.4.0", got)
	}

	BinaryVersion = "dev"
	if got := Version(); got == "" {
		t.Error("Version() should never be empty")
	}
}
