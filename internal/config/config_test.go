package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jiangshenghai57/protolinc-go/internal/dateaxis"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
}

func TestReadConfigHappyPath(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{
		"state_dimension": 4,
		"time_step": "monthly",
		"years_to_simulate": 10,
		"num_cpus": 4,
		"use_multicore": true,
		"max_age": 120,
		"log_path": "./logs/",
		"log_file": "protolinc.log",
		"future_field": 42
	}`)

	t.Setenv("OCP_ENV", "test")
	t.Setenv("CONFIG_PATH", dir+string(os.PathSeparator))

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.StateDimension != 4 {
		t.Errorf("StateDimension = %d, want 4", cfg.StateDimension)
	}
	if !cfg.UseMulticore {
		t.Error("UseMulticore = false, want true")
	}
	if cfg.Extra["future_field"] != "42" && cfg.Extra["future_field"] != float64(42) {
		t.Errorf("Extra[future_field] = %v, want 42", cfg.Extra["future_field"])
	}

	g, err := cfg.Granularity()
	if err != nil || g != dateaxis.Monthly {
		t.Errorf("Granularity() = %v, %v, want Monthly, nil", g, err)
	}
}

func TestReadConfigRejectsInvalidStateDimension(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"state_dimension": 0, "years_to_simulate": 5, "max_age": 100}`)

	t.Setenv("OCP_ENV", "test")
	t.Setenv("CONFIG_PATH", dir+string(os.PathSeparator))

	if _, err := ReadConfig(); err == nil {
		t.Fatal("expected an invalid-configuration error")
	}
}

func TestGranularityRejectsUnknownTimeStep(t *testing.T) {
	cfg := RunConfig{TimeStep: "biweekly"}
	if _, err := cfg.Granularity(); err == nil {
		t.Fatal("expected an error for an unknown time_step")
	}
}
