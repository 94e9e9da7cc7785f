// Package services defines the shared error taxonomy and context annotations
// used by collaborator clients (transcoder, camera) and the job pipeline.
//
// Errors are tagged with sentinel markers so callers can classify terminal
// job states with errors.Is without parsing messages.
package services
