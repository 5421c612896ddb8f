package main

import "github.com/portara/walletcore/cmd"

func main() {
	cmd.Execute()
}
