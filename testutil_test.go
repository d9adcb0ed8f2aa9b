package a64pipe

// Small instruction encoders used only by tests, mirroring the bit
// layouts classifyOpcode and generateControlSignals expect.

func encMOVZ(rd, hw, imm16 uint32) uint32 {
	return 0xD2800000 | (hw << 21) | ((imm16 & 0xFFFF) << 5) | rd
}

func encADDReg(rd, rn, rm uint32) uint32 {
	return 0x8B000000 | (rm << 16) | (rn << 5) | rd
}

func encADDSReg(rd, rn, rm uint32) uint32 {
	return 0xAB000000 | (rm << 16) | (rn << 5) | rd
}

func encSUBReg(rd, rn, rm uint32) uint32 {
	return 0xCB000000 | (rm << 16) | (rn << 5) | rd
}

func encSUBSReg(rd, rn, rm uint32) uint32 {
	return 0xEB000000 | (rm << 16) | (rn << 5) | rd
}

func encADDImm(rd, rn, imm12 uint32) uint32 {
	return 0x91000000 | ((imm12 & 0xFFF) << 10) | (rn << 5) | rd
}

func encLDUR(rt, rn uint32, imm9 int32) uint32 {
	return 0xF8400000 | ((uint32(imm9) & 0x1FF) << 12) | (rn << 5) | rt
}

func encSTUR(rt, rn uint32, imm9 int32) uint32 {
	return 0xF8000000 | ((uint32(imm9) & 0x1FF) << 12) | (rn << 5) | rt
}

func encHLT(imm16 uint32) uint32 {
	return 0xD4400000 | ((imm16 & 0xFFFF) << 5)
}

// encADRP encodes ADRP Xd, where imm21 is the page-relative immediate
// extractImm later reconstructs via signExtend(imm, 21) — the value
// actually added is imm21<<12, plus Fetch's recorded page base.
func encADRP(rd uint32, imm21 int32) uint32 {
	u := uint32(imm21) & 0x1FFFFF
	immlo := u & 0x3
	immhi := (u >> 2) & 0x7FFFF
	return 0x90000000 | (immlo << 29) | (immhi << 5) | rd
}

func encB(imm26Words int32) uint32 {
	return 0x14000000 | (uint32(imm26Words) & 0x03FFFFFF)
}

func encBCond(imm19Words int32, cond CondCode) uint32 {
	return 0x54000000 | ((uint32(imm19Words) & 0x7FFFF) << 5) | uint32(cond)
}

func encRET(rn uint32) uint32 {
	return 0xD65F0000 | (rn << 5)
}

// assemble loads words into a fresh FlatMemory starting at address 0,
// sized generously enough for test programs plus a data segment.
func assemble(words []uint32) *FlatMemory {
	mem := NewFlatMemory(0, 4096)
	for i, w := range words {
		mem.StoreWord(uint64(i*4), w)
	}
	return mem
}
