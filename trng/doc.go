// Package trng drives a memory-mapped true-random-number-generator
// peripheral: clock bring-up, the blocking word read loop with hardware
// fault classification, and adapters exposing the peripheral as a generic
// byte-stream entropy source. Register and clock access goes through small
// interfaces so the same driver runs against real hardware, a debug probe,
// or the simulated peripheral in package simtrng.
package trng
