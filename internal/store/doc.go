// Package store holds the latest polling snapshot and fans it out to
// subscribers.
//
// The main components are:
//
//   - [Snapshot]: the complete result of one polling cycle
//   - [PageState]: one page's records and fetch outcome within a snapshot
//   - [Store]: interface for publishing, reading and subscribing
//   - [MemoryStore]: in-memory implementation using an atomic pointer
//
// A snapshot is published as a whole. Readers never observe a snapshot in
// which only some pages have been refreshed. Subscribers receive snapshots
// via channels with non-blocking sends (slow subscribers miss updates
// rather than block the coordinator).
//
// Users of the wastlwatch library should not need to interact with this
// package directly.
package store
