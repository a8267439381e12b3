// Package generator runs empire generation and rerolls against a loaded
// catalog and persists each session so a later process can reroll it.
package generator
