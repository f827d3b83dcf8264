// Package flap implements the sequencing and animation state machine of a
// split-flap display.
//
// Component architecture:
//
//	sequencer.go     cyclic token vocabulary with a cursor
//	leaf.go          Leaf / Clock collaborators, fold animation descriptors
//	pair.go          double-buffered tic/tac leaf sets
//	orchestrator.go  per-flap state machine driving flips to a target
//	layout.go        flip phase split, tile half layout
//	board.go         a row of flaps showing a message
//	vocab.go         vocabulary presets and tokenization
//
// Rendering is left to the host: it implements Leaf and Clock and calls
// the Done callback of each bottom-phase animation from its event loop.
package flap
