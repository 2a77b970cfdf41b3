/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package version provides build version information.
package version

// Version is the current version of the scheduling engine.
// Set at build time via ldflags:
//
//	-X github.com/agendoai/aviao-sub000/internal/version.Version=X.Y.Z
var Version = "0.4.0"
