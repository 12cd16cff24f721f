package main

import "devtask/cmd"

func main() {
	cmd.Execute()
}
