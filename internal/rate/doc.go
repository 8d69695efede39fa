// Package rate implements the inner rate-control loop whose gains the
// autotune engine adjusts: a per-axis PID with feed-forward, a gain bank
// with deferred reload, and the control-rate profile supplying the
// configured rate limits.
package rate
