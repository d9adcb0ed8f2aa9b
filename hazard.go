package a64pipe

// LatchModes is the hazard-control unit's verdict for a single cycle:
// what each latch should do at the edge trigger. It is computed once
// per cycle from the current latch contents, after every stage's pure
// function has already run combinationally, and applied right before
// the clock edge.
type LatchModes struct {
	F, X, M, W Mode
}

// hazardControl implements the three hazards spec.md names plus the
// conservative error-drain rule:
//
//   - load-use: the instruction sitting in the F latch (about to enter
//     Decode) reads a register the instruction already in the X latch
//     (about to enter Execute) is loading. Stall Fetch and the F
//     latch, bubble the X latch, and let the load clear Execute before
//     re-presenting the dependent instruction to Decode.
//   - mispredicted B.cond: resolved in Execute, which redirects Fetch
//     in the same cycle. The instruction sitting in the F latch (being
//     decoded this cycle) was fetched down the wrong path; see
//     mispredictModes, which bubbles the X latch so it is discarded and
//     loads the F latch from the corrected PC.
//   - RET in Decode: RET's operand is read and forwarded in Decode, but
//     its redirect of Fetch happens once it reaches Execute, through the
//     same mispredict path as B.cond. The first cycle RET is in Decode
//     it is held for one extra cycle by stalling Fetch and bubbling the
//     X latch.
//   - any non-AOK, non-BUB status already in X/M/W stalls Fetch only:
//     the erroring instruction keeps loading into each next latch every
//     cycle so it drains forward and retires cleanly at Writeback,
//     where the cycle driver halts. Stalling every stage, as a naive
//     reading of the original hazard unit's (buggy) condition would do,
//     would deadlock the pipeline instead of draining the fault.
func hazardControl(f FLatch, dCtrl DCtrl, x XLatch, m MLatch, w WLatch) LatchModes {
	modes := LatchModes{F: ModeLoad, X: ModeLoad, M: ModeLoad, W: ModeLoad}

	if anyErrorInFlight(x, m, w) {
		modes.F = ModeStall
		return modes
	}

	if f.Status != StatAOK {
		// nothing real sitting in Decode this cycle (a bubble or a
		// stalled-but-not-yet-refilled slot); no hazard to check.
		return modes
	}

	if loadUseHazard(dCtrl, x) {
		modes.F = ModeStall
		modes.X = ModeBubble
		return modes
	}

	// RET stalls for exactly one cycle: the first time it is seen in
	// Decode the X latch still holds the instruction ahead of it, so
	// stall and bubble; once that bubble has propagated into the X
	// latch, let RET proceed rather than stalling forever.
	if dCtrl.Op == OpRET && x.Status != StatBub {
		modes.F = ModeStall
		modes.X = ModeBubble
		return modes
	}

	return modes
}

func anyErrorInFlight(x XLatch, m MLatch, w WLatch) bool {
	errored := func(s Status) bool { return s != StatAOK && s != StatBub }
	return errored(x.Status) || errored(m.Status) || errored(w.Status)
}

func loadUseHazard(dCtrl DCtrl, x XLatch) bool {
	if x.Status != StatAOK || !x.Ctrl.IsLoad {
		return false
	}
	dst := x.Ctrl.Dst
	if dst == RegZR {
		return false
	}
	return dCtrl.SrcA == dst || dCtrl.SrcB == dst
}

// mispredictModes is applied in addition to hazardControl's verdict
// once Execute has resolved a branch misprediction this cycle.
func mispredictModes(modes LatchModes) LatchModes {
	modes.F = ModeLoad
	modes.X = ModeBubble
	return modes
}
