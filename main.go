package main

import (
	"branchgate/internal/cmd"
)

func main() {
	cmd.Execute()
}
