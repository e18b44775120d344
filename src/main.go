package main

import "github.com/contre95/ferrum/src/cli"

func main() {
	cli.Execute()
}
