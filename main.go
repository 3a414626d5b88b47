package main

import "github.com/iksnae/research-session/cmd"

func main() {
	cmd.Execute()
}
