package main

import (
	"github.com/astrokernel/imperium/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
