package main

import "github.com/MeKo-Tech/rf4catch/cmd/rf4catch/cmd"

func main() {
	cmd.Execute()
}
