package main

import "github.com/epidash/tbreport-cli/cmd"

func main() {
	cmd.Execute()
}
