package main

import "greenpulse/internal/cli"

func main() {
	cli.Execute()
}
