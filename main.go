package main

import "github.com/AzielCF/az-adlib/cmd"

func main() {
	cmd.Execute()
}
