// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle: load the
// plan, select the environment, resolve variables, validate, provision and
// report. It is decoupled from any specific entrypoint like a CLI.
package app
