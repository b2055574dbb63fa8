package main

import "github.com/vanban-tech/vanban/cmd/vanban/cmd"

func main() {
	cmd.Execute()
}
