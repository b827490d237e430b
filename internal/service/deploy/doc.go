// Package deploy rolls a component version out to one Greengrass core device
// by revising the device's latest deployment.
package deploy
