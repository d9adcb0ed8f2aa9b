package a64pipe

import "testing"

func TestMachineSerializeRoundTrip(t *testing.T) {
	mem := assemble([]uint32{
		encMOVZ(0, 0, 5),
		encMOVZ(1, 0, 7),
		encADDReg(2, 0, 1),
		encHLT(0),
	})
	mc := NewMachine(mem, mem, 0)
	mc.Run(100)
	if !mc.Halted {
		t.Fatal("program did not halt")
	}

	buf := make([]byte, mc.SerializeSize())
	if err := mc.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	restored := NewMachine(mem, mem, 0)
	if err := restored.Deserialize(buf); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if restored.Regs.GPR[2] != mc.Regs.GPR[2] {
		t.Errorf("X2 = %d after restore, want %d", restored.Regs.GPR[2], mc.Regs.GPR[2])
	}
	if restored.Cycles != mc.Cycles {
		t.Errorf("Cycles = %d after restore, want %d", restored.Cycles, mc.Cycles)
	}
	if restored.Halted != mc.Halted || restored.HaltStat != mc.HaltStat {
		t.Errorf("halt state mismatch after restore")
	}
}

func TestSerializeBufferTooSmall(t *testing.T) {
	mc := NewMachine(assemble([]uint32{encHLT(0)}), nil, 0)
	err := mc.Serialize(make([]byte, 4))
	if err == nil {
		t.Fatal("expected an error for an undersized buffer")
	}
}

func TestDeserializeVersionMismatch(t *testing.T) {
	mc := NewMachine(assemble([]uint32{encHLT(0)}), nil, 0)
	buf := make([]byte, mc.SerializeSize())
	buf[0] = machineSerializeVersion + 1
	if err := mc.Deserialize(buf); err == nil {
		t.Fatal("expected a version-mismatch error")
	}
}
