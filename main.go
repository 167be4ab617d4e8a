package main

import "github.com/fabiodalez-dev/Pinakes-sub009/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
