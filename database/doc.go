// Package database provides connection management for the bun handle the
// repositories run on: dialect selection, pool tuning, health checks with
// reconnect, SQL logging hooks, driver error classification and SQL file
// based data initialization.
package database
