package main

import "explorer/internal/cli"

func main() {
	cli.Execute()
}
