// Package runner claims pending jobs from the registry and executes them one
// at a time. The staging directory is guarded by a lock file so concurrent
// runners cannot trample each other's intermediate frames.
package runner
