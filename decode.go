package a64pipe

func bits(word uint32, hi, lo uint) uint32 {
	n := hi - lo + 1
	mask := uint32(1)<<n - 1
	return (word >> lo) & mask
}

func signExtend(val uint32, width uint) int64 {
	shift := 32 - width
	return int64(int32(val<<shift) >> shift)
}

// extractRegs pulls Rd, Rn, Rm out of the fixed 5-bit fields every
// encoding here shares, without yet deciding whether index 31 means
// XZR or SP — that decision is made per-opcode in
// generateControlSignals, since the same bit pattern means different
// things in arithmetic and addressing contexts.
func extractRegs(word uint32) (rd, rn, rm uint32) {
	rd = bits(word, 4, 0)
	rn = bits(word, 9, 5)
	rm = bits(word, 20, 16)
	return
}

// resolveArith maps a raw 5-bit register field to its arithmetic-context
// Reg: 31 is XZR.
func resolveArith(field uint32) Reg {
	if field == 31 {
		return RegZR
	}
	return Reg(field)
}

// resolveAddr maps a raw 5-bit register field to its addressing-context
// Reg: 31 is SP.
func resolveAddr(field uint32) Reg {
	if field == 31 {
		return RegSP
	}
	return Reg(field)
}

// extractImm pulls the correctly-shaped immediate for op out of word,
// sign-extended where the architecture calls for it.
func extractImm(op Opcode, word uint32) uint64 {
	switch op {
	case OpMOVZ, OpMOVK:
		hw := bits(word, 22, 21)
		imm16 := uint64(bits(word, 20, 5))
		return imm16 << (16 * hw)
	case OpADDImm, OpADDSImm, OpSUBImm, OpSUBSImm:
		imm12 := uint64(bits(word, 21, 10))
		if bits(word, 22, 22) == 1 {
			imm12 <<= 12
		}
		return imm12
	case OpADRP:
		immlo := bits(word, 30, 29)
		immhi := bits(word, 23, 5)
		imm := (immhi << 2) | immlo
		return uint64(signExtend(imm, 21)) << 12
	case OpLDUR, OpSTUR:
		imm9 := bits(word, 20, 12)
		return uint64(signExtend(imm9, 9))
	case OpB, OpBL:
		imm26 := bits(word, 25, 0)
		return uint64(signExtend(imm26, 26) * 4)
	case OpBCond:
		imm19 := bits(word, 23, 5)
		return uint64(signExtend(imm19, 19) * 4)
	case OpLSLImm, OpLSRImm, OpASRImm:
		return uint64(bits(word, 21, 16)) // immr, shift amount carrier
	case OpHLT:
		return uint64(bits(word, 20, 5))
	default:
		return 0
	}
}

// decideALUOp picks the AluOp an opcode uses in Execute.
func decideALUOp(op Opcode) AluOp {
	switch op {
	case OpMOVZ:
		return AluPassB
	case OpADRP:
		return AluPlus // val_a (page base) + val_b (imm<<12), see generateControlSignals
	case OpMOVK:
		return AluOrr // replaced in generateControlSignals; executeStage does MOVK's masked merge itself
	case OpADDImm, OpADDSImm, OpADDReg, OpADDSReg, OpLDUR, OpSTUR:
		return AluPlus
	case OpSUBImm, OpSUBSImm, OpSUBReg, OpSUBSReg:
		return AluMinus
	case OpANDReg, OpANDSReg:
		return AluAnd
	case OpORRReg:
		return AluOrr
	case OpEORReg:
		return AluEor
	case OpMVN:
		return AluOrr // not used: executeStage computes ^valB for MVN directly
	case OpLSLImm:
		return AluLsl
	case OpLSRImm:
		return AluLsr
	case OpASRImm:
		return AluAsr
	case OpCSEL:
		return AluCsel
	case OpCSINC:
		return AluCsinc
	case OpCSINV:
		return AluCsinv
	case OpCSNEG:
		return AluCsneg
	default:
		return AluPlus
	}
}

// generateControlSignals is the heart of Decode: it turns a fetched
// instruction word into the DCtrl the rest of the pipeline acts on.
// Unrecognized words produce StatIns; recognized ones never need to
// be re-inspected for their opcode again.
func generateControlSignals(word uint32) (DCtrl, Status) {
	op := classifyOpcode(word)
	if op == OpInvalid {
		return DCtrl{}, StatIns
	}

	rd, rn, rm := extractRegs(word)
	c := DCtrl{Op: op, AluOp: decideALUOp(op)}
	status := StatAOK

	switch op {
	case OpMOVZ:
		c.Dst = resolveArith(rd)
		c.SrcA = RegZR
		c.UseImm = true
		c.Imm = extractImm(op, word)
		c.SetFlags = false

	case OpMOVK:
		c.Dst = resolveArith(rd)
		c.SrcA = resolveArith(rd) // MOVK preserves the other halfwords of Rd
		c.UseImm = true
		hw := bits(word, 22, 21)
		imm16 := uint64(bits(word, 20, 5))
		c.ShiftAmt = uint(16 * hw)
		c.Imm = imm16 << c.ShiftAmt
		c.AluOp = AluPassB // composed value precomputed in execute for MOVK's merge semantics

	case OpADRP:
		c.Dst = resolveArith(rd)
		c.SrcA = RegZR // val_a actually comes from F's recorded page base, via UseAux
		c.UseImm = true
		c.Imm = extractImm(op, word)
		c.UseAux = true // filled in by decodeStage from the F latch

	case OpADDImm, OpADDSImm, OpSUBImm, OpSUBSImm:
		c.Dst = resolveAddr(rd)
		c.SrcA = resolveAddr(rn)
		c.UseImm = true
		c.Imm = extractImm(op, word)
		c.SetFlags = op == OpADDSImm || op == OpSUBSImm

	case OpADDReg, OpADDSReg, OpSUBReg, OpSUBSReg, OpANDReg, OpORRReg, OpEORReg, OpANDSReg:
		c.Dst = resolveArith(rd)
		c.SrcA = resolveArith(rn)
		c.SrcB = resolveArith(rm)
		c.SetFlags = op == OpADDSReg || op == OpSUBSReg || op == OpANDSReg

	case OpMVN:
		c.Dst = resolveArith(rd)
		c.SrcA = RegZR
		c.SrcB = resolveArith(rm)

	case OpLSLImm, OpLSRImm, OpASRImm:
		immr := bits(word, 21, 16)
		imms := bits(word, 15, 10)
		c.Op = fixInstrAliases(op, immr, imms)
		c.AluOp = decideALUOp(c.Op)
		c.Dst = resolveArith(rd)
		c.SrcA = resolveArith(rn)
		if c.Op == OpLSRImm {
			c.ShiftAmt = uint(immr)
		} else {
			c.ShiftAmt = uint(64-immr) % 64
		}

	case OpHLT:
		// no register effect; escalate so Writeback halts the driver
		// once this instruction retires (see status.go's Fatal()).
		status = StatHlt

	case OpRET:
		c.IsBranch = true
		c.SrcA = resolveArith(rn) // link register to branch to

	case OpB:
		c.IsBranch = true
		c.Imm = extractImm(op, word)

	case OpBL:
		c.IsBranch = true
		c.LinkPC = true
		c.Dst = Reg(30)
		c.Imm = extractImm(op, word)

	case OpBCond:
		c.IsBranch = true
		c.Cond = CondCode(bits(word, 3, 0))
		c.Imm = extractImm(op, word)

	case OpLDUR:
		c.IsLoad = true
		c.Dst = resolveArith(rd)
		c.SrcA = resolveAddr(rn)
		c.UseImm = true
		c.Imm = extractImm(op, word)

	case OpSTUR:
		c.IsStore = true
		c.SrcA = resolveAddr(rn)
		c.SrcB = resolveArith(rd) // value to store
		c.UseImm = true
		c.Imm = extractImm(op, word)

	case OpCSEL, OpCSINC, OpCSINV, OpCSNEG:
		c.Dst = resolveArith(rd)
		c.SrcA = resolveArith(rn)
		c.SrcB = resolveArith(rm)
		c.Cond = CondCode(bits(word, 15, 12))
	}

	return c, status
}

// decodeStage is the pure combinational Decode function. It only
// resolves control signals; the cycle driver (Machine.Step) reads and
// forwards the operand values into the returned XLatch afterwards.
func decodeStage(f FLatch) (XLatch, DCtrl) {
	if f.Status != StatAOK {
		return XLatch{Status: f.Status, PC: f.PC}, DCtrl{}
	}
	ctrl, status := generateControlSignals(f.Word)
	if ctrl.UseAux {
		ctrl.Aux = f.Aux
	}
	return XLatch{Status: status, PC: f.PC, Ctrl: ctrl}, ctrl
}
