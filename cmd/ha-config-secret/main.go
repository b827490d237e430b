package main

import "github.com/oshokin/greengrass-home-assistant/cmd/ha-config-secret/cmd"

func main() {
	cmd.Execute()
}
