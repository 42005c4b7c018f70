package main

import "github.com/storelens/storelens/cmd/storelens/commands"

func main() {
	commands.Execute()
}
