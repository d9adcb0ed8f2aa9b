package a64pipe

// Reg identifies an architectural register reference already resolved
// by decode for the context it appears in. Raw 5-bit instruction
// fields are never passed around unresolved — decode always picks
// RegZR or RegSP for index 31 depending on whether the encoding names
// an arithmetic or an addressing operand, so later stages never have
// to re-derive which one was meant.
type Reg uint8

const (
	// RegZR is the zero register: reads as 0, writes are discarded.
	RegZR Reg = 31
	// RegSP is the stack pointer, stored outside the GPR array.
	RegSP Reg = 32
)

// GPR reports whether r addresses a real entry in the general-purpose
// register array (X0-X30).
func (r Reg) GPR() bool { return r < RegZR }

func (r Reg) String() string {
	switch {
	case r == RegZR:
		return "XZR"
	case r == RegSP:
		return "SP"
	case r.GPR():
		return "X" + itoa(int(r))
	default:
		return "X?"
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Registers holds the architectural state of the machine: the 31
// general-purpose registers, the stack pointer, the program counter,
// and the NZCV condition flags. XZR is not stored; it is synthesized
// by Read and discarded by Write.
type Registers struct {
	GPR  [31]uint64
	SP   uint64
	PC   uint64
	NZCV NZCV
}

// NZCV holds the four AArch64 condition flags.
type NZCV struct {
	N, Z, C, V bool
}

// ToUint32 packs the flags into the PSTATE.NZCV bit layout (bits
// 31-28), matching how the condition-code test vectors encode them.
func (f NZCV) ToUint32() uint32 {
	var v uint32
	if f.N {
		v |= 1 << 31
	}
	if f.Z {
		v |= 1 << 30
	}
	if f.C {
		v |= 1 << 29
	}
	if f.V {
		v |= 1 << 28
	}
	return v
}

// FromUint32 unpacks PSTATE.NZCV bits 31-28 into f.
func (f *NZCV) FromUint32(v uint32) {
	f.N = v&(1<<31) != 0
	f.Z = v&(1<<30) != 0
	f.C = v&(1<<29) != 0
	f.V = v&(1<<28) != 0
}

// Read returns the value named by r. XZR always reads zero; SP reads
// the dedicated stack-pointer field.
func (r Registers) Read(reg Reg) uint64 {
	switch {
	case reg == RegZR:
		return 0
	case reg == RegSP:
		return r.SP
	default:
		return r.GPR[reg]
	}
}

// Write stores val into the register named by reg. Writes to XZR are
// discarded, matching the architecture.
func (r *Registers) Write(reg Reg, val uint64) {
	switch {
	case reg == RegZR:
		return
	case reg == RegSP:
		r.SP = val
	default:
		r.GPR[reg] = val
	}
}
