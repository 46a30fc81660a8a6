package main

import "github.com/stellarr-r/strategy-launcher/cmd/strategy-launcher/cmd"

func main() {
	cmd.Execute()
}
