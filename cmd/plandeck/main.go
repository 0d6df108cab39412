package main

import "plandeck/cmd/plandeck/cmd"

func main() {
	cmd.Execute()
}
