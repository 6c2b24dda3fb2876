package main

import "phishguard/internal/cli"

func main() {
	cli.Execute()
}
