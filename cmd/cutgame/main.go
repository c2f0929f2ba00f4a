package main

import "github.com/mcoot/cutgame/internal/cli"

func main() {
	cli.Execute()
}
