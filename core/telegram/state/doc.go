// Package state serializes work per Telegram identity so that updates from
// one user are processed one at a time while different users run in parallel.
package state
