package main

import "github.com/brewvote/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
