package main

import (
	"Tracklab/cmd"
)

func main() {
	cmd.Execute()
}
