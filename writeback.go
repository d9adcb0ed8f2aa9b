package a64pipe

// writebackResult is what Writeback commits to architectural state
// this cycle: it runs before Decode in the cycle driver so a same-cycle
// read-after-write (W retiring while D reads the same register) is
// visible to Decode, per the cycle-driver ordering rule.
type writebackResult struct {
	regWrite  bool
	reg       Reg
	val       uint64
	flagWrite bool
	flags     NZCV
	halt      bool
}

// writebackStage is the pure combinational Writeback function.
func writebackStage(w WLatch) writebackResult {
	if w.Status != StatAOK {
		return writebackResult{halt: w.Status.Fatal()}
	}

	res := writebackResult{}
	ctrl := w.Ctrl

	if writesReg(ctrl) {
		res.regWrite = true
		res.reg = ctrl.Dst
		if ctrl.IsLoad {
			res.val = w.Mc.LoadVal
		} else {
			res.val = w.Xc.AluResult
		}
	}

	if ctrl.SetFlags {
		res.flagWrite = true
		res.flags = w.Xc.Flags
	}

	return res
}
