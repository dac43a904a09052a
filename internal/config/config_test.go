package config

import (
	"testing"
)

func TestDefault_Values(t *testing.T) {
	c := Default()
	if c == nil {
		t.Fatal("Default() returned nil")
	}
	if c.DefaultPreference != "shortest" {
		t.Errorf("DefaultPreference = %q, want \"shortest\"", c.DefaultPreference)
	}
	if c.UseAnsiblex {
		t.Error("UseAnsiblex = true, want false by default")
	}
	if c.AvoidHazards {
		t.Error("AvoidHazards = true, want false by default")
	}
	if c.SecurityPenalty != 500 {
		t.Errorf("SecurityPenalty = %v, want 500", c.SecurityPenalty)
	}
	if c.ShortcutWeight != 0.5 {
		t.Errorf("ShortcutWeight = %v, want 0.5", c.ShortcutWeight)
	}
	if c.CanvasWidth != 2048 || c.CanvasHeight != 2048 {
		t.Errorf("canvas = %vx%v, want 2048x2048", c.CanvasWidth, c.CanvasHeight)
	}
	if c.CanvasPadding != 64 {
		t.Errorf("CanvasPadding = %v, want 64", c.CanvasPadding)
	}
	if c.KillWindowMinutes != 60 {
		t.Errorf("KillWindowMinutes = %v, want 60", c.KillWindowMinutes)
	}
	if c.KillThreshold != 5 {
		t.Errorf("KillThreshold = %v, want 5", c.KillThreshold)
	}
}
