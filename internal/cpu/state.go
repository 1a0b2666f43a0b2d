package cpu

import "encoding/json"

// state is the versioned save-state document for the CPU: registers, flags,
// the open-bus latch, and the pending-interrupt/stall bookkeeping that would
// otherwise be lost between instructions.
type state struct {
	Version int `json:"version"`

	A  uint8  `json:"a,omitempty"`
	X  uint8  `json:"x,omitempty"`
	Y  uint8  `json:"y,omitempty"`
	SP uint8  `json:"sp"`
	PC uint16 `json:"pc"`

	C bool `json:"c,omitempty"`
	Z bool `json:"z,omitempty"`
	I bool `json:"i,omitempty"`
	D bool `json:"d,omitempty"`
	B bool `json:"b,omitempty"`
	V bool `json:"v,omitempty"`
	N bool `json:"n,omitempty"`

	Cycles  uint64 `json:"cycles"`
	OpenBus uint8  `json:"open_bus,omitempty"`

	NMILine     bool `json:"nmi_line,omitempty"`
	NMIPrevious bool `json:"nmi_previous,omitempty"`
	NMIPending  bool `json:"nmi_pending,omitempty"`
	IRQLine     bool `json:"irq_line,omitempty"`

	ResetPending bool `json:"reset_pending,omitempty"`

	DMAStallCycles uint64 `json:"dma_stall_cycles,omitempty"`
}

const cpuStateVersion = 1

// Serialize captures every piece of state needed to resume this CPU
// byte-for-byte, including in-flight interrupt and DMA-stall bookkeeping.
func (cpu *CPU) Serialize() json.RawMessage {
	s := state{
		Version:        cpuStateVersion,
		A:              cpu.A,
		X:              cpu.X,
		Y:              cpu.Y,
		SP:             cpu.SP,
		PC:             cpu.PC,
		C:              cpu.C,
		Z:              cpu.Z,
		I:              cpu.I,
		D:              cpu.D,
		B:              cpu.B,
		V:              cpu.V,
		N:              cpu.N,
		Cycles:         cpu.cycles,
		OpenBus:        cpu.openBus,
		NMILine:        cpu.nmiLine,
		NMIPrevious:    cpu.nmiPrevious,
		NMIPending:     cpu.nmiPending,
		IRQLine:        cpu.irqLine,
		ResetPending:   cpu.resetPending,
		DMAStallCycles: cpu.dmaStallCycles,
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return json.RawMessage("{}")
	}
	return raw
}

// Deserialize restores state previously produced by Serialize.
func (cpu *CPU) Deserialize(data json.RawMessage) error {
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	cpu.A, cpu.X, cpu.Y = s.A, s.X, s.Y
	cpu.SP = s.SP
	cpu.PC = s.PC
	cpu.C, cpu.Z, cpu.I, cpu.D, cpu.B, cpu.V, cpu.N = s.C, s.Z, s.I, s.D, s.B, s.V, s.N
	cpu.cycles = s.Cycles
	cpu.openBus = s.OpenBus
	cpu.nmiLine = s.NMILine
	cpu.nmiPrevious = s.NMIPrevious
	cpu.nmiPending = s.NMIPending
	cpu.irqLine = s.IRQLine
	cpu.resetPending = s.ResetPending
	cpu.dmaStallCycles = s.DMAStallCycles
	return nil
}
