// Package cli wires the §6 CLI flag surface onto a cobra command and
// bridges the parsed flags into a harness.Options, mirroring the teacher's
// internal/cli flag-registration pattern (RegisterXFlags(cmd, flags)) while
// replacing its MCP-aggregator-connection flags with gotestr's own.
package cli
