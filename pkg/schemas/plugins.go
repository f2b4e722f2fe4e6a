// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package schemas

var (
	SecretPlugins = []string{
		"gitsecrets",
		"truffle_hog",
	}

	StaticPlugins = []string{
		"cfn_python_lint",
		"bandit",
		"brakeman",
		"checkov",
		"detekt",
		"eslint",
		"findsecbugs_java7",
		"findsecbugs_java8",
		"findsecbugs_java13",
		"gosec",
		"nodejsscan",
		"python_code_checker",
		"shell_check",
		"swiftlint",
		"tflint",
	}

	TechPlugins = []string{
		"base_images",
		"technology_discovery",
	}

	VulnPlugins = []string{
		"aqua_cli_scanner",
		"bundler_audit",
		"node_dependencies",
		"owasp_dependency_check",
		"php_sensio_security_checker",
		"trivy",
		"veracode_sca",
	}

	// NonDefaultPlugins are not enabled for all users.
	NonDefaultPlugins = []string{"snyk"}
)

// KnownPlugins returns the plugins that can be toggled individually for a
// category. SBOM plugins are not toggled individually and return nil.
func KnownPlugins(c Category) []string {
	switch c {
	case CategorySecret:
		return SecretPlugins
	case CategoryStaticAnalysis:
		return StaticPlugins
	case CategoryInventory:
		return TechPlugins
	case CategoryVulnerability:
		return VulnPlugins
	default:
		return nil
	}
}
