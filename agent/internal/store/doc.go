// Package store keeps the most recent poll cycle reports in memory for the
// status API and the WebSocket stream. It is a fixed-size history: Put
// appends and evicts the oldest report once the configured capacity is
// reached. Nothing is persisted across restarts.
package store
