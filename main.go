package main

import "github.com/fakeyudi/storydrill/cmd"

func main() {
	cmd.Execute()
}
