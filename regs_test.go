package a64pipe

import "testing"

func TestXZRReadsZero(t *testing.T) {
	var r Registers
	r.Write(RegZR, 0xDEADBEEF)
	if got := r.Read(RegZR); got != 0 {
		t.Errorf("XZR read back %#x, want 0", got)
	}
}

func TestXZRWriteDiscarded(t *testing.T) {
	var r Registers
	r.GPR[5] = 42
	r.Write(RegZR, 999)
	if r.GPR[5] != 42 {
		t.Error("writing XZR must not touch GPR storage")
	}
}

func TestSPIsSeparateFromGPRs(t *testing.T) {
	var r Registers
	r.Write(RegSP, 0x1000)
	r.Write(Reg(0), 0x2000)
	if r.Read(RegSP) != 0x1000 {
		t.Errorf("SP = %#x, want 0x1000", r.Read(RegSP))
	}
	if r.Read(Reg(0)) != 0x2000 {
		t.Errorf("X0 = %#x, want 0x2000", r.Read(Reg(0)))
	}
}

func TestGPRRoundTrip(t *testing.T) {
	var r Registers
	for i := Reg(0); i < 31; i++ {
		r.Write(i, uint64(i)*0x1111)
	}
	for i := Reg(0); i < 31; i++ {
		want := uint64(i) * 0x1111
		if got := r.Read(i); got != want {
			t.Errorf("X%d = %#x, want %#x", i, got, want)
		}
	}
}

func TestNZCVRoundTrip(t *testing.T) {
	f := NZCV{N: true, Z: false, C: true, V: false}
	var g NZCV
	g.FromUint32(f.ToUint32())
	if g != f {
		t.Errorf("round trip %+v != %+v", g, f)
	}
}
