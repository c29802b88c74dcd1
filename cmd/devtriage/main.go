package main

import "devtriage/internal/cli"

func main() {
	cli.Execute()
}
