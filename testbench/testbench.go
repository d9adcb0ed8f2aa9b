// Package testbench reads and writes the on-disk binary testcase
// files spec.md's external interfaces describe for exercising the ALU
// and register file in isolation from the pipeline, grounded directly
// on the original project's test-hw.c fread/fwrite harness: a 4-byte
// magic, a 4-byte version, an 8-byte case count, and fixed-size
// records after that.
package testbench

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/a64pipe/a64pipe"
)

var be = binary.BigEndian

const (
	aluMagic  = "ALUT"
	regMagic  = "REGT"
	version   = 1
	aluRecSz  = 1 + 1 + 8 + 8 + 1 + 1 + 8 + 4 // op,setFlags,valA,valB,shiftAmt,cond,wantVal,wantNZCV
	regRecSz  = 1 + 8 + 1 + 1 + 8 + 8         // writeReg,writeVal,readReg1,readReg2,wantRead1,wantRead2
)

// AluCase is one ALU testcase: inputs and the expected result.
type AluCase struct {
	Op         a64pipe.AluOp
	SetFlags   bool
	ValA, ValB uint64
	ShiftAmt   uint8
	Cond       a64pipe.CondCode
	WantVal    uint64
	WantNZCV   uint32
}

// RegCase is one register-file testcase: a write followed by two
// reads, exercising XZR/SP sentinel behavior as well as ordinary GPRs.
type RegCase struct {
	WriteReg  a64pipe.Reg
	WriteVal  uint64
	ReadReg1  a64pipe.Reg
	ReadReg2  a64pipe.Reg
	WantRead1 uint64
	WantRead2 uint64
}

// WriteAluCases writes cases to w in the on-disk ALU testbench format.
func WriteAluCases(w io.Writer, cases []AluCase) error {
	if err := writeHeader(w, aluMagic, len(cases)); err != nil {
		return err
	}
	buf := make([]byte, aluRecSz)
	for _, c := range cases {
		buf[0] = byte(c.Op)
		buf[1] = boolByte(c.SetFlags)
		be.PutUint64(buf[2:], c.ValA)
		be.PutUint64(buf[10:], c.ValB)
		buf[18] = c.ShiftAmt
		buf[19] = byte(c.Cond)
		be.PutUint64(buf[20:], c.WantVal)
		be.PutUint32(buf[28:], c.WantNZCV)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// ReadAluCases reads an ALU testbench file from r.
func ReadAluCases(r io.Reader) ([]AluCase, error) {
	n, err := readHeader(r, aluMagic)
	if err != nil {
		return nil, err
	}
	cases := make([]AluCase, 0, n)
	buf := make([]byte, aluRecSz)
	for i := uint64(0); i < n; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		cases = append(cases, AluCase{
			Op:       a64pipe.AluOp(buf[0]),
			SetFlags: buf[1] != 0,
			ValA:     be.Uint64(buf[2:]),
			ValB:     be.Uint64(buf[10:]),
			ShiftAmt: buf[18],
			Cond:     a64pipe.CondCode(buf[19]),
			WantVal:  be.Uint64(buf[20:]),
			WantNZCV: be.Uint32(buf[28:]),
		})
	}
	return cases, nil
}

// WriteRegCases writes cases to w in the on-disk register-file
// testbench format.
func WriteRegCases(w io.Writer, cases []RegCase) error {
	if err := writeHeader(w, regMagic, len(cases)); err != nil {
		return err
	}
	buf := make([]byte, regRecSz)
	for _, c := range cases {
		buf[0] = byte(c.WriteReg)
		be.PutUint64(buf[1:], c.WriteVal)
		buf[9] = byte(c.ReadReg1)
		buf[10] = byte(c.ReadReg2)
		be.PutUint64(buf[11:], c.WantRead1)
		be.PutUint64(buf[19:], c.WantRead2)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// ReadRegCases reads a register-file testbench file from r.
func ReadRegCases(r io.Reader) ([]RegCase, error) {
	n, err := readHeader(r, regMagic)
	if err != nil {
		return nil, err
	}
	cases := make([]RegCase, 0, n)
	buf := make([]byte, regRecSz)
	for i := uint64(0); i < n; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		cases = append(cases, RegCase{
			WriteReg:  a64pipe.Reg(buf[0]),
			WriteVal:  be.Uint64(buf[1:]),
			ReadReg1:  a64pipe.Reg(buf[9]),
			ReadReg2:  a64pipe.Reg(buf[10]),
			WantRead1: be.Uint64(buf[11:]),
			WantRead2: be.Uint64(buf[19:]),
		})
	}
	return cases, nil
}

func writeHeader(w io.Writer, magic string, count int) error {
	hdr := make([]byte, 4+4+8)
	copy(hdr[0:4], magic)
	be.PutUint32(hdr[4:8], version)
	be.PutUint64(hdr[8:16], uint64(count))
	_, err := w.Write(hdr)
	return err
}

func readHeader(r io.Reader, wantMagic string) (uint64, error) {
	hdr := make([]byte, 4+4+8)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return 0, err
	}
	if string(hdr[0:4]) != wantMagic {
		return 0, errors.New("a64pipe/testbench: bad magic")
	}
	if be.Uint32(hdr[4:8]) != version {
		return 0, errors.New("a64pipe/testbench: unsupported version")
	}
	return be.Uint64(hdr[8:16]), nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// CheckResult is the outcome of running one ALU or register-file
// testcase against the hardware primitives.
type CheckResult struct {
	Index int
	Pass  bool
	Got   uint64
	Want  uint64
}

// RunAluCases exercises each case against the real AluExec
// implementation and reports pass/fail per case.
func RunAluCases(cases []AluCase) []CheckResult {
	results := make([]CheckResult, len(cases))
	for i, c := range cases {
		var cur a64pipe.NZCV
		res := a64pipe.AluExec(c.Op, c.ValA, c.ValB, uint(c.ShiftAmt), c.Cond, cur, c.SetFlags)
		pass := res.Value == c.WantVal
		if c.SetFlags {
			pass = pass && res.Flags.ToUint32() == c.WantNZCV
		}
		results[i] = CheckResult{Index: i, Pass: pass, Got: res.Value, Want: c.WantVal}
	}
	return results
}

// RunRegCases exercises each case against a fresh Registers value.
func RunRegCases(cases []RegCase) []CheckResult {
	results := make([]CheckResult, len(cases))
	for i, c := range cases {
		var regs a64pipe.Registers
		regs.Write(c.WriteReg, c.WriteVal)
		got1 := regs.Read(c.ReadReg1)
		got2 := regs.Read(c.ReadReg2)
		pass := got1 == c.WantRead1 && got2 == c.WantRead2
		results[i] = CheckResult{Index: i, Pass: pass, Got: got1, Want: c.WantRead1}
	}
	return results
}
