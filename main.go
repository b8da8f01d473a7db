package main

import "github.com/example/nihonwa/cmd"

func main() {
	cmd.Execute()
}
