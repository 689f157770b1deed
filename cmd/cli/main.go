// tfanalyze - Terraform apply timing analyzer
//
// tfanalyze reads the captured console output of a terraform apply and
// reports how long each resource took to create.
package main

import (
	"os"

	"github.com/ccollicutt/tfanalyze/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
