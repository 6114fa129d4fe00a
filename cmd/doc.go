// Package cmd wires the cobra CLI: a single root command carrying the §6
// flag surface (positional FILTER included) plus version/self-update
// subcommands, mirroring the teacher's cmd/root.go shape.
package cmd
