package main

import "github.com/felixgeelhaar/zenith/cmd/zenith/cli"

func main() {
	cli.Execute()
}
