// Package contracts provides the shared error taxonomy for the faultgate resilience layer.
//
// This package defines the types that flow between the classifier, the
// recovery machinery and their callers:
//   - ErrorType: the failure category (network, timeout, validation, ...)
//   - Severity: how bad the failure is (low through critical)
//   - Strategy: the recovery decision (retry, fallback, degrade, ignore, fail)
//   - Classification: the full (type, severity, strategy, retryable) verdict
//   - ErrorContext: the opaque (component, operation) identifier pair created
//     at the failure site
//   - FaultError: a structured error tagged with its category at the throw
//     site, preferred over message heuristics during classification
//
// All types here are plain values with no behavior beyond formatting; the
// decision procedures that consume them live in the classify package and the
// root faultgate package.
package contracts
