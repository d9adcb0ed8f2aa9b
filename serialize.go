package a64pipe

import (
	"encoding/binary"
	"errors"
)

// machineSerializeVersion is incremented whenever the binary layout
// below changes.
const machineSerializeVersion = 1

// machineSerializeSize is the number of bytes produced by
// Machine.Serialize: 1 version byte, 31 GPRs + SP + PC (33 x 8 bytes),
// 4 NZCV flag bytes, 8 bytes of cycle count, 1 halted byte, 1 halt
// status byte, and one Status+PC block per latch (F, X, M, W). The F
// latch's instruction word and the control-signal state of the other
// latches are not preserved across a snapshot boundary, matching the
// teacher's choice not to serialize bus references.
const machineSerializeSize = 1 + 33*8 + 4 + 8 + 1 + 1 + 4*(1+8)

// SerializeSize returns the number of bytes Serialize needs.
func (mc *Machine) SerializeSize() int { return machineSerializeSize }

// Serialize writes a snapshot of mc's architectural state and
// in-flight latch statuses into buf, which must be at least
// SerializeSize() bytes. Imem/Dmem are not included, mirroring the
// teacher's choice not to serialize bus references.
func (mc *Machine) Serialize(buf []byte) error {
	if len(buf) < machineSerializeSize {
		return errors.New("a64pipe: serialize buffer too small")
	}

	buf[0] = machineSerializeVersion
	be := binary.BigEndian
	off := 1

	for i := 0; i < 31; i++ {
		be.PutUint64(buf[off:], mc.Regs.GPR[i])
		off += 8
	}
	be.PutUint64(buf[off:], mc.Regs.SP)
	off += 8
	be.PutUint64(buf[off:], mc.Regs.PC)
	off += 8

	be.PutUint32(buf[off:], mc.Regs.NZCV.ToUint32())
	off += 4

	be.PutUint64(buf[off:], mc.Cycles)
	off += 8

	buf[off] = boolByte(mc.Halted)
	off++
	buf[off] = byte(mc.HaltStat)
	off++

	for _, st := range []struct {
		status Status
		pc     uint64
	}{
		{mc.f.Status, mc.f.PC},
		{mc.x.Status, mc.x.PC},
		{mc.m.Status, mc.m.PC},
		{mc.w.Status, mc.w.PC},
	} {
		buf[off] = byte(st.status)
		off++
		be.PutUint64(buf[off:], st.pc)
		off += 8
	}

	return nil
}

// Deserialize restores architectural register state, cycle count, and
// halt status from buf. In-flight latch control signals are not
// restored; the caller must not resume mid-instruction after a
// Deserialize, only at a clean cycle boundary with empty latches.
func (mc *Machine) Deserialize(buf []byte) error {
	if len(buf) < machineSerializeSize {
		return errors.New("a64pipe: deserialize buffer too small")
	}
	if buf[0] != machineSerializeVersion {
		return errors.New("a64pipe: unsupported serialize version")
	}

	be := binary.BigEndian
	off := 1

	for i := 0; i < 31; i++ {
		mc.Regs.GPR[i] = be.Uint64(buf[off:])
		off += 8
	}
	mc.Regs.SP = be.Uint64(buf[off:])
	off += 8
	mc.Regs.PC = be.Uint64(buf[off:])
	off += 8

	mc.Regs.NZCV.FromUint32(be.Uint32(buf[off:]))
	off += 4

	mc.Cycles = be.Uint64(buf[off:])
	off += 8

	mc.Halted = buf[off] != 0
	off++
	mc.HaltStat = Status(buf[off])
	off++

	latches := []*struct {
		status *Status
		pc     *uint64
	}{
		{&mc.f.Status, &mc.f.PC},
		{&mc.x.Status, &mc.x.PC},
		{&mc.m.Status, &mc.m.PC},
		{&mc.w.Status, &mc.w.PC},
	}
	for _, l := range latches {
		*l.status = Status(buf[off])
		off++
		*l.pc = be.Uint64(buf[off:])
		off += 8
	}

	return nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
