package main

import "github.com/mcoot/dartsync/internal/cli"

func main() {
	cli.Execute()
}
