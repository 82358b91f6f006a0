package main

import "mpihole/internal/cli"

func main() {
	cli.Execute()
}
