package main

import "filedupfinder/cmd"

func main() {
	cmd.Execute()
}
