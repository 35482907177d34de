package main

import "github.com/pocketpause/pausecore/cmd"

func main() {
	cmd.Execute()
}
