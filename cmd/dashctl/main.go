package main

import "github.com/iammorganparry/pof-dashboard/cmd/dashctl/commands"

func main() {
	commands.Execute()
}
