// Package startup owns process initialization: environment configuration,
// directory validation, external tool checks, and the sectioned startup
// log. Everything the service needs before serving traffic is resolved
// here so main stays a thin wiring layer.
package startup
