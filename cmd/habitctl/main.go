package main

import "habitledger/cmd/habitctl/root"

func main() {
	root.Execute()
}
