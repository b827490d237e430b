package main

import "github.com/oshokin/greengrass-home-assistant/cmd/ha-build/cmd"

func main() {
	cmd.Execute()
}
