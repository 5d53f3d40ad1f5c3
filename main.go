package main

import "cart_ledger/cmd"

func main() {
	cmd.Execute()
}
