package main

import "github.com/gaurav-prasanna/bulletinpipe/cmd"

func main() {
	cmd.Execute()
}
