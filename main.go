package main

import "github.com/iksnae/datalk/cmd"

func main() {
	cmd.Execute()
}
