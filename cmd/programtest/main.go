package main

import "github.com/LeJamon/programtest/internal/cli"

func main() {
	cli.Execute()
}
