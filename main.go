package main

import "github.com/hvacsim/hvacsim-desktop/cmd"

func main() {
	cmd.Execute()
}
