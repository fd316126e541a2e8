package main

import "github.com/mcoot/guessword/internal/cli"

func main() {
	cli.Execute()
}
