// Package builder implements the entry builder: the semantic-replay
// subsystem that turns a host-produced Trace into the canonical
// operation log the constraint system (pkg/gadget, pkg/exectable,
// pkg/memtable) assigns witness cells from.
package builder

import (
	"encoding/binary"

	"github.com/rv0-labs/rv0prove/pkg/isa"
	"github.com/rv0-labs/rv0prove/pkg/ops"
)

// MemoryBytes is the size of the byte-addressable memory image: 32 MiB,
// zero-initialized, matching the original core's ckb-vm-flexible-size
// convention.
const MemoryBytes = 32 * 1024 * 1024

// Entries holds the authoritative replay state and its accumulated
// operation log. It is created empty, mutated exclusively by the
// EntryBuilder during replay, then handed off — conceptually frozen — to
// the circuit for read-only witness assignment. Neither memoryBuffer nor
// registerBuffer is ever read by the circuit directly; only the logged
// ops are.
type Entries struct {
	// pcInstructions maps a pc to the instruction observed there; the
	// program image, learned by observation of steps rather than
	// supplied out of band.
	pcInstructions map[uint64]isa.Instruction
	// pcs is the ordered (global_clk, pc) trace, strictly ordered by
	// global_clk (I4).
	pcs []PCRecord
	// registerOps maps global_clk to the register operations logged
	// during that step.
	registerOps map[uint64]*ops.PerStepRegisterOps
	// memoryOps maps global_clk to the memory operation logged during
	// that step, if any (at most one per step in this core).
	memoryOps map[uint64]ops.MemoryOp

	memoryBuffer   []byte
	registerBuffer [32]uint64

	// shouldCopyRegisters is the resync flag: when set, the next step's
	// register snapshot is authoritative and overwrites registerBuffer
	// rather than being checked against it.
	shouldCopyRegisters bool
}

// PCRecord is one (global_clk, pc) observation.
type PCRecord struct {
	GlobalClk uint64
	PC        uint64
}

// NewEntries returns an empty Entries ready for EntryBuilder.Build. The
// resync flag starts set: the very first step's register snapshot is
// authoritative (the host may start the machine with a non-zero initial
// state), not something replay can assert equality against.
func NewEntries() *Entries {
	return &Entries{
		pcInstructions:      make(map[uint64]isa.Instruction),
		registerOps:         make(map[uint64]*ops.PerStepRegisterOps),
		memoryOps:           make(map[uint64]ops.MemoryOp),
		memoryBuffer:        make([]byte, MemoryBytes),
		shouldCopyRegisters: true,
	}
}

// PCInstructions returns the learned program image.
func (e *Entries) PCInstructions() map[uint64]isa.Instruction {
	return e.pcInstructions
}

// PCs returns the ordered (global_clk, pc) trace.
func (e *Entries) PCs() []PCRecord {
	return e.pcs
}

// RegisterOps returns the per-step register operations logged for gc, if
// any.
func (e *Entries) RegisterOps(gc uint64) (*ops.PerStepRegisterOps, bool) {
	p, ok := e.registerOps[gc]
	return p, ok
}

// MemoryOps returns the memory operation logged for gc, if any.
func (e *Entries) MemoryOps(gc uint64) (ops.MemoryOp, bool) {
	m, ok := e.memoryOps[gc]
	return m, ok
}

// AllMemoryOps returns every logged memory operation, in no particular
// order; pkg/memtable is responsible for sorting them.
func (e *Entries) AllMemoryOps() []ops.MemoryOp {
	out := make([]ops.MemoryOp, 0, len(e.memoryOps))
	for _, m := range e.memoryOps {
		out = append(out, m)
	}
	return out
}

// recordPC records a (pc -> instruction) observation, idempotently: a
// second observation at the same pc that disagrees on the instruction is
// fatal trace corruption (the program image must not move under us).
func (e *Entries) recordPC(gc, pc uint64, instr isa.Instruction) error {
	if existing, ok := e.pcInstructions[pc]; ok {
		if existing != instr {
			return newBuildError(gc, "pc %d disagrees with previously observed instruction: have %+v, saw %+v", pc, existing, instr)
		}
	} else {
		e.pcInstructions[pc] = instr
	}
	e.pcs = append(e.pcs, PCRecord{GlobalClk: gc, PC: pc})
	return nil
}

// updatePCRegister is a placeholder for a future dedicated PC column.
// AUIPC is the one opcode that mutates pc outside of normal sequential
// or branch/jump control flow; until a PC table exists downstream, this
// is a deliberate no-op (see design notes on the AUIPC open question).
func (e *Entries) updatePCRegister(gc, value uint64) {
	_ = gc
	_ = value
}

// resyncRegisters overwrites the shadow register file from a step
// snapshot and clears the resync flag.
func (e *Entries) resyncRegisters(snapshot [32]uint64) {
	e.registerBuffer = snapshot
	e.shouldCopyRegisters = false
}

// checkRegisters asserts the shadow register file matches a step
// snapshot element-wise (I2); mismatch is fatal trace corruption,
// reported with the offending index.
func (e *Entries) checkRegisters(gc uint64, snapshot [32]uint64) error {
	for i := 0; i < 32; i++ {
		if e.registerBuffer[i] != snapshot[i] {
			return newBuildError(gc, "register x%d snapshot mismatch: shadow=%d snapshot=%d", i, e.registerBuffer[i], snapshot[i])
		}
	}
	return nil
}

// readRegisterRaw logs a READ of the shadow register file into step,
// satisfying I3 (the logged value equals the shadow value at read time)
// by construction.
func (e *Entries) readRegisterRaw(step *ops.PerStepRegisterOps, index uint64) uint64 {
	v := e.registerBuffer[index]
	step.AppendRead(index, v)
	return v
}

// writeRegisterRaw logs a WRITE and updates the shadow register file,
// except for x0: a WRITE to index 0 is logged but suppressed from the
// shadow (I1), so a subsequent READ of x0 still returns 0.
func (e *Entries) writeRegisterRaw(step *ops.PerStepRegisterOps, index, value uint64) {
	if index != 0 {
		e.registerBuffer[index] = value
	}
	step.AppendWrite(index, value)
}

// readMemoryRaw reads a little-endian value of the given bit width from
// the memory image and logs the READ. Out-of-range addresses are fatal
// (I5/out-of-range access in the error taxonomy).
func (e *Entries) readMemoryRaw(gc, address uint64, width uint8) (uint64, error) {
	n := int(width / 8)
	if err := e.checkMemoryBounds(gc, address, n); err != nil {
		return 0, err
	}
	value := decodeLittleEndian(e.memoryBuffer[address:address+uint64(n)], width)
	e.memoryOps[gc] = ops.MemoryOp{GlobalClk: gc, RW: ops.READ, Address: address, Value: value, Width: width}
	return value, nil
}

// writeMemoryRaw writes a little-endian value of the given bit width
// into the memory image and logs the WRITE.
func (e *Entries) writeMemoryRaw(gc, address, value uint64, width uint8) error {
	n := int(width / 8)
	if err := e.checkMemoryBounds(gc, address, n); err != nil {
		return err
	}
	encodeLittleEndian(e.memoryBuffer[address:address+uint64(n)], value, width)
	e.memoryOps[gc] = ops.MemoryOp{GlobalClk: gc, RW: ops.WRITE, Address: address, Value: value, Width: width}
	return nil
}

func (e *Entries) checkMemoryBounds(gc, address uint64, widthBytes int) error {
	if address > uint64(len(e.memoryBuffer)) || uint64(len(e.memoryBuffer))-address < uint64(widthBytes) {
		return newBuildError(gc, "out-of-range memory access at address %d (width %d bytes, memory size %d)", address, widthBytes, len(e.memoryBuffer))
	}
	return nil
}

func decodeLittleEndian(b []byte, width uint8) uint64 {
	switch width {
	case 8:
		return uint64(b[0])
	case 16:
		return uint64(binary.LittleEndian.Uint16(b))
	case 32:
		return uint64(binary.LittleEndian.Uint32(b))
	case 64:
		return binary.LittleEndian.Uint64(b)
	default:
		panic("unsupported memory width")
	}
}

func encodeLittleEndian(b []byte, value uint64, width uint8) {
	switch width {
	case 8:
		b[0] = byte(value)
	case 16:
		binary.LittleEndian.PutUint16(b, uint16(value))
	case 32:
		binary.LittleEndian.PutUint32(b, uint32(value))
	case 64:
		binary.LittleEndian.PutUint64(b, value)
	default:
		panic("unsupported memory width")
	}
}
