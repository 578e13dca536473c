// Package cli implements the storefront subcommands on top of the shopping
// state manager, the catalog client and the account service. Output is
// rendered with lipgloss tables so it reads well in a terminal and degrades
// to plain text when piped.
package cli
