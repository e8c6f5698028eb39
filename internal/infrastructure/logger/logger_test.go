package logger

import "testing"

func TestInit_Levels(t *testing.T) {
	t.Cleanup(func() { Log = nil })

	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		if err := Init("test", level); err != nil {
			t.Errorf("Init(%q): %v", level, err)
		}
	}
}

func TestInit_RejectsUnknownLevel(t *testing.T) {
	t.Cleanup(func() { Log = nil })

	if err := Init("test", "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	Log = nil
	Info("ignored")
	Warn("ignored")
	Debug("ignored")
	Error("ignored")
	Sync()
	if Named("x") == nil {
		t.Error("Named must never return nil")
	}
}
