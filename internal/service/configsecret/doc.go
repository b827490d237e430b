// Package configsecret packs the local secrets directory and stores it in the
// configuration secret, creating the secret on first use.
package configsecret
