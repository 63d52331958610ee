package main

import "vkyc/cmd/vkyc/cmd"

func main() {
	cmd.Execute()
}
