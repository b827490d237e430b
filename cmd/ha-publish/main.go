package main

import "github.com/oshokin/greengrass-home-assistant/cmd/ha-publish/cmd"

func main() {
	cmd.Execute()
}
