package a64pipe

// forwardSource names where a value read in Decode actually came from
// this cycle, for diagnostics and tests; the value itself is always
// what gets used regardless of source.
type forwardSource int

const (
	fromRegfile forwardSource = iota
	fromExecute
	fromMemory
	fromWriteback
)

// resolveOperand implements the forwarding network's freshest-producer-wins
// priority: Execute beats Memory beats Writeback beats the register
// file itself. RegZR short-circuits to zero regardless of anything in
// flight.
func resolveOperand(reg Reg, regs Registers, x XLatch, xc XCtrl, m MLatch, mc MCtrl, w WLatch) (uint64, forwardSource) {
	if reg == RegZR {
		return 0, fromRegfile
	}

	if x.Status == StatAOK && writesReg(x.Ctrl) && destReg(x.Ctrl) == reg {
		return xc.AluResult, fromExecute
	}
	if m.Status == StatAOK && writesReg(m.Ctrl) && destReg(m.Ctrl) == reg {
		if m.Ctrl.IsLoad {
			return mc.LoadVal, fromMemory
		}
		return m.Xc.AluResult, fromMemory
	}
	if w.Status == StatAOK && writesReg(w.Ctrl) && destReg(w.Ctrl) == reg {
		if w.Ctrl.IsLoad {
			return w.Mc.LoadVal, fromWriteback
		}
		return w.Xc.AluResult, fromWriteback
	}

	return regs.Read(reg), fromRegfile
}

// resolveFlags forwards NZCV the same way resolveOperand forwards a
// register: the freshest in-flight flag-setter wins over the
// architectural value committed by Writeback. Execute is the only
// consumer (for B.cond and the conditional-select family) and it is
// never itself a producer the same cycle, so the producers to check
// are just M then W.
func resolveFlags(cur NZCV, m MLatch, w WLatch) NZCV {
	if m.Status == StatAOK && m.Ctrl.SetFlags {
		return m.Xc.Flags
	}
	if w.Status == StatAOK && w.Ctrl.SetFlags {
		return w.Xc.Flags
	}
	return cur
}

// writesReg reports whether ctrl's instruction writes an architectural
// register at all (B, B.cond, RET, stores and HLT do not; BL writes X30).
func writesReg(ctrl DCtrl) bool {
	switch ctrl.Op {
	case OpB, OpBCond, OpRET, OpSTUR, OpHLT, OpInvalid:
		return false
	default:
		return true
	}
}

// destReg is the register ctrl's instruction writes, already resolved
// to the correct Reg (GPR, RegZR or RegSP) by Decode.
func destReg(ctrl DCtrl) Reg {
	return ctrl.Dst
}
