// This program performs administrative tasks against a chain's genesis
// document and the proof of work machinery.
package main

import (
	"github.com/zimcoin/blockchain/app/tooling/admin/commands"
)

func main() {
	commands.Execute()
}
