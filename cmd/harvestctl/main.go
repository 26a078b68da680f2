package main

import (
	"umaharvest-backend/cmd/harvestctl/commands"
)

func main() {
	commands.Execute()
}
