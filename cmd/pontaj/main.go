// Command pontaj is the command line front end of the overtime ledger.
package main

import "github.com/warp/pontaj/cli"

func main() {
	cli.Execute()
}
