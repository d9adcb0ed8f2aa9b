package a64pipe

// executeStage is the pure combinational Execute function. valA/valB
// are the already-forwarded operand values selected by the forwarding
// network in the cycle driver; cur is the NZCV the forwarding
// network's flag path resolves for this cycle (the flags of a
// flag-setter in the M or W latch if there is one, otherwise the
// architectural NZCV after this cycle's writeback), and is what
// B.cond and the conditional-select family evaluate against.
func executeStage(x XLatch, valA, valB uint64, cur NZCV) (MLatch, XCtrl) {
	if x.Status != StatAOK {
		return MLatch{Status: x.Status, PC: x.PC}, XCtrl{}
	}

	ctrl := x.Ctrl
	var xc XCtrl

	switch ctrl.Op {
	case OpMOVK:
		merged := (valA &^ (uint64(0xFFFF) << ctrl.ShiftAmt)) | ctrl.Imm
		xc.AluResult = merged

	case OpMVN:
		xc.AluResult = ^valB

	case OpB, OpBL:
		xc.BranchTaken = true
		xc.BranchTgt = x.PC + ctrl.Imm
		if ctrl.LinkPC {
			xc.AluResult = x.PC + 4
		}
		// Fetch already predicted this exact target, so never a mispredict.

	case OpRET:
		xc.BranchTaken = true
		xc.Mispredict = true // RET target is dynamic; never correctly predicted sequentially
		if valA == RetFromMainAddr {
			// return-from-main sentinel: tell Fetch to synthesize a
			// clean-shutdown HLT instead of reading memory at all, since
			// the link register holds no real fetchable address here.
			xc.HaltOnFetch = true
		} else {
			xc.BranchTgt = valA
		}

	case OpBCond:
		taken := CondHolds(ctrl.Cond, cur)
		predictedTaken := true // Fetch always predicts the branch taken
		xc.BranchTaken = taken
		if taken {
			xc.BranchTgt = x.PC + ctrl.Imm
		} else {
			xc.BranchTgt = x.PC + 4
		}
		xc.Mispredict = taken != predictedTaken

	case OpLDUR, OpSTUR:
		res := AluExec(AluPlus, valA, uint64(int64(ctrl.Imm)), 0, ctrl.Cond, cur, false)
		xc.AluResult = res.Value

	default:
		b := valB
		if ctrl.UseImm {
			b = ctrl.Imm
		}
		res := AluExec(ctrl.AluOp, valA, b, ctrl.ShiftAmt, ctrl.Cond, cur, ctrl.SetFlags)
		xc.AluResult = res.Value
		xc.Flags = res.Flags
	}

	return MLatch{Status: x.Status, PC: x.PC, Ctrl: ctrl, Xc: xc, StoreVal: valB}, xc
}
