// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stackhand/stackhand/lib/config"
)

func TestCheckImage(t *testing.T) {
	t.Parallel()

	configuration := config.Default()
	if result := checkImage(configuration); result.Status != StatusPass {
		t.Errorf("default image check = %+v, want pass", result)
	}

	configuration.Container.Image = ""
	if result := checkImage(configuration); result.Status != StatusFail {
		t.Errorf("empty image check = %+v, want fail", result)
	}
}

func TestCheckPassphrase(t *testing.T) {
	configuration := config.Default()
	configuration.Stack.PassphraseEnv = "STACKHAND_TEST_PASSPHRASE"

	if result := checkPassphrase(configuration); result.Status != StatusWarn {
		t.Errorf("unset passphrase check = %+v, want warn", result)
	}

	t.Setenv("STACKHAND_TEST_PASSPHRASE", "hunter2")
	if result := checkPassphrase(configuration); result.Status != StatusPass {
		t.Errorf("set passphrase check = %+v, want pass", result)
	}

	configuration.Stack.PassphraseFile = filepath.Join(t.TempDir(), "missing")
	if result := checkPassphrase(configuration); result.Status != StatusFail {
		t.Errorf("missing passphrase file check = %+v, want fail", result)
	}
}

func TestCheckAzdo(t *testing.T) {
	configuration := config.Default()

	result := checkAzdo(configuration)
	if result.Status != StatusWarn {
		t.Errorf("unconfigured azdo check = %+v, want warn", result)
	}

	configuration.Azdo.OrganizationURL = "https://dev.azure.com/contoso"
	configuration.Azdo.Project = "platform"
	configuration.Azdo.Repository = "infra"
	configuration.Azdo.PATEnv = "STACKHAND_TEST_PAT"

	if result := checkAzdo(configuration); result.Status != StatusWarn {
		t.Errorf("azdo check without PAT = %+v, want warn", result)
	}

	t.Setenv("STACKHAND_TEST_PAT", "pat-value")
	result = checkAzdo(configuration)
	if result.Status != StatusPass {
		t.Errorf("azdo check with PAT = %+v, want pass", result)
	}
	if !strings.Contains(result.Message, "dev.azure.com") {
		t.Errorf("pass message = %q, want organization URL", result.Message)
	}
}

func TestCheckConfigMissingFile(t *testing.T) {
	t.Parallel()

	configuration, result := checkConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if configuration != nil {
		t.Error("expected nil config for missing file")
	}
	if result.Status != StatusFail {
		t.Errorf("missing config check = %+v, want fail", result)
	}
}
