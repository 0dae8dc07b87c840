package main

import "github.com/packed-dev/packed/cmd/packed/cli"

func main() {
	cli.Run()
}
