package main

import "github.com/museboard/museboard/cmd/boardctl/cmd"

func main() {
	cmd.Execute()
}
