package guide

import "testing"

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Pipeline.Validate(); err != nil {
		t.Errorf("Pipeline.Validate() = %v", err)
	}
	if err := cfg.Camera.Validate(); err != nil {
		t.Errorf("Camera.Validate() = %v", err)
	}
	if err := cfg.Web.Validate(); err != nil {
		t.Errorf("Web.Validate() = %v", err)
	}
	if err := cfg.JSONL.Validate(); err != nil {
		t.Errorf("JSONL.Validate() = %v", err)
	}
	if err := cfg.SQLite.Validate(); err != nil {
		t.Errorf("SQLite.Validate() = %v", err)
	}
}

func TestFromEnvOverlays(t *testing.T) {
	t.Setenv("GUIDEWALK_CAMERA", "walk.mp4")
	t.Setenv("GUIDEWALK_SPEECH", "console")
	t.Setenv("GUIDEWALK_MODEL_ENABLED", "false")
	t.Setenv("GUIDEWALK_FLOOR_SCORE", "60")
	t.Setenv("GUIDEWALK_DB_PATH", "/tmp/session.db")

	cfg := FromEnv()

	if cfg.Camera.Source != "walk.mp4" {
		t.Errorf("Camera.Source = %q, want walk.mp4", cfg.Camera.Source)
	}
	if cfg.Speech != "console" {
		t.Errorf("Speech = %q, want console", cfg.Speech)
	}
	if cfg.ModelEnabled {
		t.Error("ModelEnabled = true, want false")
	}
	if cfg.Pipeline.Alert.FloorScore != 60 {
		t.Errorf("FloorScore = %d, want 60", cfg.Pipeline.Alert.FloorScore)
	}
	// The store path follows the app-level setting.
	if cfg.SQLite.Path != "/tmp/session.db" {
		t.Errorf("SQLite.Path = %q, want /tmp/session.db", cfg.SQLite.Path)
	}
}

func TestFromEnvDefaultsWhenUnset(t *testing.T) {
	t.Setenv("GUIDEWALK_CAMERA", "")
	cfg := FromEnv()
	if cfg.Camera.Source != "0" {
		t.Errorf("Camera.Source = %q, want default 0", cfg.Camera.Source)
	}
}
