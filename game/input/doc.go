// Package input normalizes player input into game commands.
//
// Keyboard keys (browser KeyboardEvent.key names), on-screen button names and
// touch swipes all map to a Command. Allowed applies the gating rules: the
// snake only turns while a run is active and unpaused, and pause only
// applies to a running game.
package input
