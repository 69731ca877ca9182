// Package retry provides a bounded retry loop for transient failures.
//
// The [Do] function retries an operation up to a maximum number of attempts,
// waiting between attempts according to a pluggable [Backoff] strategy
// ([Fixed] or [Exponential]). It reports how many attempts were made and,
// on exhaustion, an [ExhaustedError] carrying the last failure. It backs the
// shell command executor and the Hetzner Cloud agent.
package retry
