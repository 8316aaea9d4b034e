package main

import (
	"github.com/Benardi/br-deputy-elections/internal/commander"
)

func main() {
	commander.NewCommander().Start()
}
