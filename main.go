package main

import "adpilot/internal/cli"

func main() {
	cli.Execute()
}
