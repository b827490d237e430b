package main

import "github.com/oshokin/greengrass-home-assistant/cmd/ha-deploy/cmd"

func main() {
	cmd.Execute()
}
