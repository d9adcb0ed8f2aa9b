package a64pipe

// selectPC picks the PC Fetch actually uses this cycle: the
// mispredict-corrected target from Execute if one is pending,
// otherwise the predicted PC carried by the current Fetch latch.
func selectPC(m *Machine) uint64 {
	if m.mispredictPC != nil {
		return *m.mispredictPC
	}
	return m.nextFetchPC
}

// predictPC computes the statically predicted next-fetch PC for a
// just-fetched instruction: sequential (PC+4) unless the opcode is an
// unconditional or conditional branch, in which case the branch
// target is predicted taken. B.cond is predicted taken; a misprediction
// is caught and corrected in Execute once the condition is evaluated.
func predictPC(pc uint64, word uint32) uint64 {
	op := classifyOpcode(word)
	switch op {
	case OpB, OpBL:
		imm26 := int32(word&0x03FFFFFF) << 6 >> 6
		return pc + uint64(int64(imm26)*4)
	case OpBCond:
		imm19 := int32(word&0x00FFFFE0) << 8 >> 13
		return pc + uint64(int64(imm19)*4)
	default:
		return pc + 4
	}
}

// syntheticHltWord is the encoded HLT #0 instruction Fetch synthesizes
// for a return-from-main shutdown, rather than reading one out of
// instruction memory.
const syntheticHltWord uint32 = 0xD4400000

// fetchStage is the pure combinational Fetch function: given the
// machine's instruction memory and the PC selected this cycle, it
// produces the FLatch that Decode will see next cycle. synthesizeHalt
// is set by the caller only on the cycle a RET's operand matched the
// return-from-main sentinel (see execute.go); the link register held
// no real fetchable address, so Fetch substitutes a HLT rather than
// reading pc out of memory.
func fetchStage(imem InstrMemory, pc uint64, synthesizeHalt bool) FLatch {
	if synthesizeHalt {
		return FLatch{Status: StatHlt, PC: pc, Word: syntheticHltWord}
	}

	word, ok := imem.FetchWord(pc)
	if !ok {
		// out-of-range or misaligned PC: an instruction-fetch fault is
		// INS, not ADR — ADR is reserved for data-memory faults at M.
		return FLatch{Status: StatIns, PC: pc}
	}
	return FLatch{
		Status: StatAOK,
		PC:     pc,
		Word:   word,
		PredPC: predictPC(pc, word),
		Aux:    auxPC(pc, word),
	}
}

// auxPC computes the F latch's multipurpose field: the sequential
// successor PC for every opcode except ADRP, which instead needs its
// page base (PC with the low 12 bits cleared) carried into Decode.
func auxPC(pc uint64, word uint32) uint64 {
	if classifyOpcode(word) == OpADRP {
		return pc &^ 0xFFF
	}
	return pc + 4
}
