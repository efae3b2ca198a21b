package main

import "github.com/synthfin/synthfin/cmd"

func main() {
	cmd.Execute()
}
