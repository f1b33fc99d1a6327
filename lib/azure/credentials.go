// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package azure wires Azure authentication material into the Pulumi
// execution container. Two modes are supported, independently optional
// and combinable:
//
//   - az CLI profile: the operator's ~/.azure directory is bind-mounted
//     into the container, so pulumi's azure-native provider picks up
//     the existing "az login" session.
//   - OIDC federation: a workload identity token (from a CI pipeline)
//     is written into the container and exposed through the ARM_* /
//     AZURE_* environment variable pairs the provider expects.
package azure

import (
	"fmt"

	"github.com/stackhand/stackhand/lib/container"
)

// TokenPath is where the OIDC token file is written inside the
// container, referenced by AZURE_FEDERATED_TOKEN_FILE.
const TokenPath = "/root/.azure/oidc_token"

// Credentials holds Azure authentication material for the container.
// The zero value applies nothing.
type Credentials struct {
	// CLIDir is the host path of an az CLI profile directory
	// (typically ~/.azure). When set, it is mounted at /root/.azure.
	CLIDir string

	// OIDCToken is a federated workload identity token. Requires
	// ClientID and TenantID.
	OIDCToken string

	// ClientID is the Azure client (application) ID for OIDC.
	ClientID string

	// TenantID is the Azure tenant ID for OIDC.
	TenantID string
}

// Validate checks for incomplete OIDC configuration.
func (c *Credentials) Validate() error {
	if c.OIDCToken != "" {
		if c.ClientID == "" {
			return fmt.Errorf("azure: OIDC token given without a client ID")
		}
		if c.TenantID == "" {
			return fmt.Errorf("azure: OIDC token given without a tenant ID")
		}
	}
	return nil
}

// Apply mutates spec with the mounts and environment this credential
// set requires. The OIDC token goes into SecretEnv so it never appears
// in argv or logs; the token file itself is written into the running
// container when NeedsTokenFile reports true.
func (c *Credentials) Apply(spec *container.Spec) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if spec.Env == nil {
		spec.Env = make(map[string]string)
	}
	if spec.SecretEnv == nil {
		spec.SecretEnv = make(map[string]string)
	}

	if c.CLIDir != "" {
		spec.Mounts = append(spec.Mounts, container.Mount{
			Source:   c.CLIDir,
			Target:   "/root/.azure",
			ReadOnly: false, // az CLI refreshes tokens in place
		})
		spec.Env["AZURE_AUTH"] = "az"
	}

	if c.OIDCToken != "" {
		spec.SecretEnv["ARM_OIDC_TOKEN"] = c.OIDCToken
		spec.SecretEnv["AZURE_OIDC_TOKEN"] = c.OIDCToken

		spec.Env["ARM_USE_OIDC"] = "true"
		spec.Env["AZURE_USE_OIDC"] = "true"
		spec.Env["ARM_CLIENT_ID"] = c.ClientID
		spec.Env["AZURE_CLIENT_ID"] = c.ClientID
		spec.Env["ARM_TENANT_ID"] = c.TenantID
		spec.Env["AZURE_TENANT_ID"] = c.TenantID
		spec.Env["AZURE_FEDERATED_TOKEN_FILE"] = TokenPath
	}

	return nil
}

// NeedsTokenFile reports whether the federated token file must be
// written after container creation.
func (c *Credentials) NeedsTokenFile() bool {
	return c.OIDCToken != ""
}

// Token returns the OIDC token bytes for the token file write. Callers
// must not log the result.
func (c *Credentials) Token() []byte {
	return []byte(c.OIDCToken)
}
