package main

import "github.com/ikkim/storefront-backend/cmd/shopctl/commands"

func main() {
	commands.Execute()
}
