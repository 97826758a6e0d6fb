package main

import "mulberry/canvas/cmd"

func main() {
	cmd.Execute()
}
