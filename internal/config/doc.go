// Package config defines the format-agnostic configuration model: plan
// variables, environments, and the raw steps whose arguments may still refer
// to variables. Concrete loaders (HCL, YAML) translate their documents into a
// Model; Model.Plan then resolves variables for one environment and produces
// the plan.Plan consumed by the orchestrator.
package config
