// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package plans

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stackhand/stackhand/lib/plan"
)

// writeStoreConfig writes a config pointing the plan store at its own
// temp directory and returns the config path plus the store directory.
func writeStoreConfig(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	storeDir := filepath.Join(dir, "plans")
	configPath := filepath.Join(dir, "stackhand.yaml")
	content := "plans:\n  dir: " + storeDir + "\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return configPath, storeDir
}

func archivePlan(t *testing.T, storeDir, stack string, data []byte) *plan.Entry {
	t.Helper()

	store, err := plan.NewStore(storeDir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	entry, err := store.Put(stack, data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	return entry
}

func TestRunShowLatest(t *testing.T) {
	configPath, storeDir := writeStoreConfig(t)
	archivePlan(t, storeDir, "dev", []byte(`{"changeSummary": {"same": 2}}`))

	params := &showParams{Config: configPath, Stack: "dev"}
	if err := runShow(params, "latest"); err != nil {
		t.Fatalf("runShow latest: %v", err)
	}
}

func TestRunShowByDigestPrefix(t *testing.T) {
	configPath, storeDir := writeStoreConfig(t)
	entry := archivePlan(t, storeDir, "dev", []byte(`{"changeSummary": {"create": 3}}`))

	params := &showParams{Config: configPath}
	if err := runShow(params, entry.Digest[:8]); err != nil {
		t.Fatalf("runShow by prefix: %v", err)
	}
}

func TestRunShowLatestRequiresStack(t *testing.T) {
	configPath, storeDir := writeStoreConfig(t)
	archivePlan(t, storeDir, "dev", []byte(`{"changeSummary": {"same": 1}}`))

	params := &showParams{Config: configPath}
	err := runShow(params, "latest")
	if err == nil {
		t.Fatal("runShow accepted \"latest\" without --stack")
	}
	if !strings.Contains(err.Error(), "--stack") {
		t.Errorf("error = %q, want --stack hint", err)
	}
}

func TestRunShowUnknownDigest(t *testing.T) {
	configPath, _ := writeStoreConfig(t)

	params := &showParams{Config: configPath}
	if err := runShow(params, "zzzz"); err == nil {
		t.Fatal("runShow accepted a digest matching no archived plan")
	}
}

func TestRunLs(t *testing.T) {
	configPath, storeDir := writeStoreConfig(t)
	archivePlan(t, storeDir, "dev", []byte(`{"changeSummary": {"create": 1}}`))
	archivePlan(t, storeDir, "prod", []byte(`{"changeSummary": {"update": 2}}`))

	params := &lsParams{Config: configPath}
	if err := runLs(params); err != nil {
		t.Fatalf("runLs: %v", err)
	}

	params = &lsParams{Config: configPath, Stack: "prod"}
	if err := runLs(params); err != nil {
		t.Fatalf("runLs with stack filter: %v", err)
	}
}

func TestRunLsEmptyStore(t *testing.T) {
	configPath, _ := writeStoreConfig(t)

	params := &lsParams{Config: configPath}
	if err := runLs(params); err != nil {
		t.Fatalf("runLs on empty store: %v", err)
	}
}
