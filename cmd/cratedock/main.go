package main

import "github.com/cratedock/cratedock/cmd/cratedock/cmd"

func main() {
	cmd.Execute()
}
