package main

import "github.com/Shauryasoni262/BusinessOps-Suite-sub001/cli/cmd"

func main() {
	cmd.Execute()
}
