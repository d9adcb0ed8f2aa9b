package a64pipe

import "testing"

func TestClassifyOpcode(t *testing.T) {
	cases := []struct {
		name string
		word uint32
		want Opcode
	}{
		{"MOVZ", 0xD2800000, OpMOVZ},
		{"MOVK", 0xF2800000, OpMOVK},
		{"ADRP", 0x90000000, OpADRP},
		{"ADD imm", 0x91000000, OpADDImm},
		{"ADDS imm", 0xB1000000, OpADDSImm},
		{"SUB imm", 0xD1000000, OpSUBImm},
		{"SUBS imm", 0xF1000000, OpSUBSImm},
		{"ADD reg", 0x8B000000, OpADDReg},
		{"SUBS reg (CMP)", 0xEB00001F, OpSUBSReg},
		{"AND reg", 0x8A000000, OpANDReg},
		{"ORR reg", 0xAA000000, OpORRReg},
		{"EOR reg", 0xCA000000, OpEORReg},
		{"ANDS reg", 0xEA000000, OpANDSReg},
		{"MVN", 0xAA2003E0, OpMVN},
		{"HLT", 0xD4400000, OpHLT},
		{"RET", 0xD65F03C0, OpRET},
		{"B", 0x14000000, OpB},
		{"BL", 0x94000000, OpBL},
		{"B.cond", 0x54000000, OpBCond},
		{"LDUR", 0xF8400000, OpLDUR},
		{"STUR", 0xF8000000, OpSTUR},
		{"garbage", 0x00000000, OpInvalid},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := classifyOpcode(c.word); got != c.want {
				t.Errorf("classifyOpcode(%#08x) = %v, want %v", c.word, got, c.want)
			}
		})
	}
}

func TestMOVZImmediateShift(t *testing.T) {
	// MOVZ X0, #0x1234, LSL #16 -> hw=01, imm16=0x1234
	word := uint32(0xD2800000) | (1 << 21) | (0x1234 << 5)
	got := extractImm(OpMOVZ, word)
	want := uint64(0x1234) << 16
	if got != want {
		t.Errorf("extractImm = %#x, want %#x", got, want)
	}
}

func TestBCondImmediateSignExtends(t *testing.T) {
	// B.cond with a negative imm19 (branch backwards)
	imm19 := uint32(0x7FFFF) // -1 in 19-bit two's complement
	word := uint32(0x54000000) | (imm19 << 5)
	got := extractImm(OpBCond, word)
	if int64(got) != -4 {
		t.Errorf("extractImm = %d, want -4", int64(got))
	}
}
