// Package poller drives the periodic fetch-parse cycles of wastlwatch.
//
// The main components are:
//
//   - [Client]: HTTP client with a pooled transport, per-request timeouts and
//     ISO-8859-1 decoding of page bodies
//   - [Coordinator]: runs cycles over all configured pages on a bounded worker
//     pool and publishes one snapshot per cycle
//   - [PageInfo]: configuration for a page to poll
//   - [PageResult]: tagged outcome of one page's fetch and parse
//
// Failures are contained at the page level: a page whose fetch or parse
// fails contributes an empty record list to its cycle's snapshot and is
// retried on the next tick.
//
// Users of the wastlwatch library should not need to interact with this
// package directly. Configuration is done through the main wastlwatch package.
package poller
