package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/openinvoice/relver/internal/cli"
)

const (
	cmdName = "relver"

	shortDesc = "The parser release manifest tool."
	longDesc  = `Relver manages the release manifest of an invoice parser package.

It bumps the parser's semantic version, recomputes the SHA-256 digest and
byte size of each tracked source file, and rewrites parser_version.json so
that consumers can detect new releases and validate their downloads.
`
)

func main() {
	cmd := cli.NewRootCmd(cmdName, shortDesc, longDesc)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		os.Exit(1)
	}
}
