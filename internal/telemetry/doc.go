// Package telemetry forwards product events and errors to an analytics endpoint.
//
// [Reporter.LogError] is the single place handlers report failures: it logs the error and forwards it as an
// "error" event. Forwarding is best effort; a failing or throttled analytics backend never surfaces to the caller.
package telemetry
