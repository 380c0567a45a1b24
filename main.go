package main

import "github.com/distroforge/distroforge/cmd"

func main() {
	cmd.Execute()
}
