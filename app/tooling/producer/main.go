package main

import "github.com/foldchain/blockchain/app/tooling/producer/cmd"

func main() {
	cmd.Execute()
}
