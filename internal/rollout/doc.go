// Package rollout prepares a new revision of a device deployment and waits
// for the fleet service to finish applying it.
//
// The deployment is read, modified and resubmitted without any concurrency
// control, so two operators deploying to the same device at once may lose an
// update.
package rollout
