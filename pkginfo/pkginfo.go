// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pkginfo exposes build metadata for the ttsetl binary. Version,
// CommitHash and BuildDate are normally stamped through -ldflags; when a
// value is missing the embedded VCS build settings are used instead so
// `go install` builds still report something useful.
package pkginfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
)

var (
	BuildDate  string
	CommitHash string
	Version    string
)

// BuildVersionString returns the multi-line version report printed by the
// version command.
func BuildVersionString() string {
	commit, date := CommitHash, BuildDate
	if commit == "" || date == "" {
		vcsCommit, vcsDate := vcsInfo()
		if commit == "" {
			commit = vcsCommit
		}
		if date == "" {
			date = vcsDate
		}
	}

	version := Version
	if version == "" {
		version = "devel"
	}

	return fmt.Sprintf("ttsetl %s %s/%s\n\nBuild Date: %s\nCommit: %s\nBuilt with: %s",
		version, runtime.GOOS, runtime.GOARCH, date, commit, runtime.Version())
}

// GetDependencyList returns every module linked into the binary as
// `path="version"` strings, sorted.
func GetDependencyList() []string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}

	deps := make([]string, 0, len(buildInfo.Deps))
	for _, dep := range buildInfo.Deps {
		deps = append(deps, fmt.Sprintf("%s=%q", dep.Path, dep.Version))
	}

	sort.Strings(deps)

	return deps
}

// vcsInfo pulls the commit hash and commit time recorded by the toolchain.
func vcsInfo() (commit string, date string) {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown", "unknown"
	}

	commit, date = "unknown", "unknown"
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			commit = setting.Value
		case "vcs.time":
			date = setting.Value
		}
	}

	return commit, date
}
