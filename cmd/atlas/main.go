package main

import "appatlas/cmd/atlas/cmd"

func main() {
	cmd.Execute()
}
