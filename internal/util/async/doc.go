// Package async runs independent named tasks concurrently and reports
// every failure.
package async
