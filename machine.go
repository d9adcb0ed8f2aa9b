package a64pipe

import "log"

// RetFromMainAddr is the "return from main" sentinel: a test program
// signals a clean shutdown by loading this value into the link
// register (X30) with a single MOVZ and then executing RET, rather
// than retiring an explicit HLT. Fits a bare 16-bit MOVZ immediate, so
// no MOVK is needed to set it up.
const RetFromMainAddr uint64 = 0xDEAD

// Machine wires together the five pipeline stages, the register file,
// and the instruction/data memories into a single steppable unit.
type Machine struct {
	Regs Registers
	Imem InstrMemory
	Dmem DataMemory

	f FLatch
	x XLatch
	m MLatch
	w WLatch

	nextFetchPC  uint64
	mispredictPC *uint64

	Cycles   uint64
	Halted   bool
	HaltStat Status
}

// NewMachine builds a Machine with the given memories and an initial
// PC, with every latch reset to a bubble.
func NewMachine(imem InstrMemory, dmem DataMemory, initialPC uint64) *Machine {
	mc := &Machine{
		Imem:        imem,
		Dmem:        dmem,
		nextFetchPC: initialPC,
	}
	mc.f = FLatch{Status: StatBub}
	mc.x = XLatch{Status: StatBub}
	mc.m = MLatch{Status: StatBub}
	mc.w = WLatch{Status: StatBub}
	return mc
}

// Step advances the machine by exactly one cycle. It runs every
// stage's pure combinational function in reverse pipeline order
// (Writeback, Memory, Execute, Decode, Fetch) so that Writeback's
// same-cycle register commit is visible to Decode's read and to the
// forwarding network, computes the hazard-control unit's verdict, and
// commits the next-cycle latch contents at the edge trigger. It
// returns false once a fatal status has retired through Writeback.
func (mc *Machine) Step() bool {
	if mc.Halted {
		return false
	}

	// Writeback first: same-cycle read-after-write visibility for Decode.
	wbRes := writebackStage(mc.w)
	if wbRes.regWrite {
		mc.Regs.Write(wbRes.reg, wbRes.val)
	}
	if wbRes.flagWrite {
		mc.Regs.NZCV = wbRes.flags
	}
	if wbRes.halt {
		mc.Halted = true
		mc.HaltStat = mc.w.Status
		if mc.w.Status == StatIns || mc.w.Status == StatAdr {
			log.Printf("a64pipe: fault %s retired at PC=0x%x", mc.w.Status, mc.w.PC)
		}
	}

	newW, mcOut := memoryStage(mc.m, mc.Dmem)

	// Execute uses the operand values Decode already resolved (and
	// forwarded) into the X latch last cycle; it never re-consults the
	// forwarding network itself. NZCV is its own small forwarding
	// network, though: a flag-setting instruction's result is not
	// visible in mc.Regs.NZCV until it retires through Writeback, so a
	// B.cond or conditional-select reading flags one or two cycles
	// behind a flag-setter must see the in-flight value instead of the
	// stale committed one.
	newM, xc := executeStage(mc.x, mc.x.ValA, mc.x.ValB, resolveFlags(mc.Regs.NZCV, mc.m, mc.w))

	// Decode: resolve control signals and forward operands for the
	// instruction sitting in the F latch, against X/M/W as they stood
	// entering this cycle (the forwarding network's priority is
	// Execute > Memory > Writeback, each already computed above).
	newX, dCtrl := decodeStage(mc.f)
	if newX.Status == StatAOK {
		if dCtrl.UseAux {
			newX.ValA = dCtrl.Aux // ADRP's page base, not a register read
		} else {
			newX.ValA, _ = resolveOperand(dCtrl.SrcA, mc.Regs, mc.x, xc, mc.m, mcOut, mc.w)
		}
		newX.ValB, _ = resolveOperand(dCtrl.SrcB, mc.Regs, mc.x, xc, mc.m, mcOut, mc.w)
	}

	modes := hazardControl(mc.f, dCtrl, mc.x, mc.m, mc.w)
	haltFetch := false
	if xc.Mispredict {
		modes = mispredictModes(modes)
		next := xc.BranchTgt
		mc.mispredictPC = &next
		haltFetch = xc.HaltOnFetch
	} else {
		mc.mispredictPC = nil
	}

	pc := selectPC(mc)
	mc.Regs.PC = pc
	newF := fetchStage(mc.Imem, pc, haltFetch)
	if modes.F == ModeLoad {
		mc.nextFetchPC = newF.PredPC
	}

	mc.commit(modes, newF, newX, newM, newW)
	mc.Cycles++
	return true
}

func (mc *Machine) commit(modes LatchModes, newF FLatch, newX XLatch, newM MLatch, newW WLatch) {
	switch modes.F {
	case ModeLoad:
		mc.f = newF
	case ModeStall:
		// f latch holds its contents unchanged
	case ModeBubble:
		mc.f = FLatch{Status: StatBub}
	}

	switch modes.X {
	case ModeLoad:
		mc.x = newX
	case ModeStall:
	case ModeBubble:
		mc.x = XLatch{Status: StatBub}
	}

	switch modes.M {
	case ModeLoad:
		mc.m = newM
	case ModeStall:
	case ModeBubble:
		mc.m = MLatch{Status: StatBub}
	}

	switch modes.W {
	case ModeLoad:
		mc.w = newW
	case ModeStall:
	case ModeBubble:
		mc.w = WLatch{Status: StatBub}
	}
}

// Run steps the machine until it halts or maxCycles is reached,
// whichever comes first.
func (mc *Machine) Run(maxCycles uint64) {
	for i := uint64(0); i < maxCycles; i++ {
		if !mc.Step() {
			return
		}
	}
}
