// Package a64pipe implements a cycle-accurate, five-stage in-order
// pipelined emulator for a subset of the AArch64 instruction set:
// fetch, decode, execute, memory, and writeback, wired together with
// a hazard-control unit and a same-cycle data-forwarding network.
//
// The pipeline is driven one cycle at a time by Machine.Step. Each
// stage is a pure function of its input latch and the machine's
// architectural state; Step runs them in reverse stage order
// (writeback, memory, execute, decode, fetch) so that same-cycle
// writeback-to-decode visibility and forwarding both see a
// consistent view of the register file, then commits the next-cycle
// latch contents chosen by the hazard-control unit.
package a64pipe
