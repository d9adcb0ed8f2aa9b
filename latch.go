package a64pipe

// FLatch is the Fetch/Decode pipeline register: what Fetch produced
// for the instruction currently entering Decode.
type FLatch struct {
	Status Status
	PC     uint64
	PredPC uint64 // predicted next PC; Fetch uses it next cycle unless Execute redirects
	Word   uint32
	Aux    uint64 // sequential successor PC, or ADRP's page base
}

// DCtrl is the set of control signals Decode derives from the opcode.
// Struct-of-booleans/tagged-enum fields rather than a single opcode
// switch re-consulted downstream, so every later stage only ever asks
// "what does DCtrl say" instead of re-decoding the instruction word.
type DCtrl struct {
	Op       Opcode
	AluOp    AluOp
	Cond     CondCode
	SrcA     Reg
	SrcB     Reg
	Dst      Reg
	UseImm   bool
	Imm      uint64
	SetFlags bool
	IsLoad   bool
	IsStore  bool
	IsBranch bool
	LinkPC   bool // BL: write return address into X30
	ShiftAmt uint
	UseAux   bool   // val_a comes from F's multipurpose field, not the register file
	Aux      uint64 // ADRP's page base, carried through from F
}

// XLatch is the Decode/Execute pipeline register.
type XLatch struct {
	Status Status
	PC     uint64
	Ctrl   DCtrl
	ValA   uint64 // already forwarded
	ValB   uint64 // already forwarded
}

// XCtrl is what Execute produces for Memory: the ALU result and the
// flags it would set, plus the branch resolution the cycle driver acts
// on. DCtrl itself travels alongside it in MLatch.Ctrl.
type XCtrl struct {
	AluResult   uint64
	Flags       NZCV
	BranchTaken bool
	BranchTgt   uint64
	Mispredict  bool
	HaltOnFetch bool // RET matched the return-from-main sentinel: Fetch must synthesize a HLT rather than read BranchTgt out of memory
}

// MLatch is the Execute/Memory pipeline register.
type MLatch struct {
	Status   Status
	PC       uint64
	Ctrl     DCtrl
	Xc       XCtrl
	StoreVal uint64
}

// MCtrl is what Memory produces for Writeback.
type MCtrl struct {
	LoadVal uint64
}

// WLatch is the Memory/Writeback pipeline register: the last stage,
// holding everything needed to commit architectural state.
type WLatch struct {
	Status Status
	PC     uint64
	Ctrl   DCtrl
	Xc     XCtrl
	Mc     MCtrl
}
