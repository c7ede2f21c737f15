// Package registry provides the central "glue" for the module system.
//
// The Registry maps the client kinds named by plan environments (e.g.
// `client = "socketio"`) to the Go factories that build a provisioning
// client for that environment. Modules add themselves during application
// startup; environments are checked against the registry before anything
// is provisioned.
package registry
