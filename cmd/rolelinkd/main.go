package main

import "github.com/rolelink/rolelink/internal/cli"

func main() {
	cli.Execute()
}
