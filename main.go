package main

import "github.com/theirongolddev/subcal/cmd"

func main() {
	cmd.Execute()
}
