package main

import "github.com/oshokin/greengrass-home-assistant/cmd/ha-install/cmd"

func main() {
	cmd.Execute()
}
