package cpu

// State is an in-memory snapshot of CPU register state. The orchestrator's
// save-state document does not use it; it goes through Serialize instead.
type State struct {
	A, X, Y, SP        uint8
	PC                 uint16
	Status             uint8
	Cycles             uint64
	OpenBus            uint8
	NMIPending, NMILine bool
	IRQLine            bool
}

// Snapshot captures the CPU's serializable state.
func (cpu *CPU) Snapshot() State {
	return State{
		A: cpu.A, X: cpu.X, Y: cpu.Y, SP: cpu.SP, PC: cpu.PC,
		Status: cpu.GetStatusByte(), Cycles: cpu.cycles, OpenBus: cpu.openBus,
		NMIPending: cpu.nmiPending, NMILine: cpu.nmiPrevious, IRQLine: cpu.irqLine,
	}
}

// Restore applies a previously captured snapshot.
func (cpu *CPU) Restore(s State) {
	cpu.A, cpu.X, cpu.Y, cpu.SP, cpu.PC = s.A, s.X, s.Y, s.SP, s.PC
	cpu.SetStatusByte(s.Status)
	cpu.cycles, cpu.openBus = s.Cycles, s.OpenBus
	cpu.nmiPending, cpu.nmiPrevious, cpu.irqLine = s.NMIPending, s.NMILine, s.IRQLine
}

// Load/store

func (cpu *CPU) lda(address uint16) uint8 { cpu.A = cpu.readByte(address); cpu.setZN(cpu.A); return 0 }
func (cpu *CPU) ldx(address uint16) uint8 { cpu.X = cpu.readByte(address); cpu.setZN(cpu.X); return 0 }
func (cpu *CPU) ldy(address uint16) uint8 { cpu.Y = cpu.readByte(address); cpu.setZN(cpu.Y); return 0 }
func (cpu *CPU) sta(address uint16) uint8 { cpu.writeByte(address, cpu.A); return 0 }
func (cpu *CPU) stx(address uint16) uint8 { cpu.writeByte(address, cpu.X); return 0 }
func (cpu *CPU) sty(address uint16) uint8 { cpu.writeByte(address, cpu.Y); return 0 }

// Arithmetic

func (cpu *CPU) adc(address uint16) uint8 {
	value := cpu.readByte(address)
	carry := uint8(0)
	if cpu.C {
		carry = 1
	}
	result := uint16(cpu.A) + uint16(value) + uint16(carry)
	cpu.V = ((cpu.A^uint8(result))&0x80) != 0 && ((cpu.A^value)&0x80) == 0
	cpu.C = result > 0xFF
	cpu.A = uint8(result)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) sbc(address uint16) uint8 {
	value := cpu.readByte(address) ^ 0xFF
	carry := uint8(0)
	if cpu.C {
		carry = 1
	}
	result := uint16(cpu.A) + uint16(value) + uint16(carry)
	cpu.V = ((cpu.A^uint8(result))&0x80) != 0 && ((cpu.A^value)&0x80) == 0
	cpu.C = result > 0xFF
	cpu.A = uint8(result)
	cpu.setZN(cpu.A)
	return 0
}

// Logical

func (cpu *CPU) and(address uint16) uint8 { cpu.A &= cpu.readByte(address); cpu.setZN(cpu.A); return 0 }
func (cpu *CPU) ora(address uint16) uint8 { cpu.A |= cpu.readByte(address); cpu.setZN(cpu.A); return 0 }
func (cpu *CPU) eor(address uint16) uint8 { cpu.A ^= cpu.readByte(address); cpu.setZN(cpu.A); return 0 }

// Shift/rotate (memory forms): read, write the unmodified value back, then
// write the modified value — the documented RMW double-write.

func (cpu *CPU) asl(address uint16) uint8 {
	value := cpu.readByte(address)
	cpu.writeByte(address, value)
	cpu.C = value&0x80 != 0
	value <<= 1
	cpu.writeByte(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) lsr(address uint16) uint8 {
	value := cpu.readByte(address)
	cpu.writeByte(address, value)
	cpu.C = value&0x01 != 0
	value >>= 1
	cpu.writeByte(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) rol(address uint16) uint8 {
	value := cpu.readByte(address)
	cpu.writeByte(address, value)
	oldCarry := cpu.C
	cpu.C = value&0x80 != 0
	value <<= 1
	if oldCarry {
		value |= 0x01
	}
	cpu.writeByte(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) ror(address uint16) uint8 {
	value := cpu.readByte(address)
	cpu.writeByte(address, value)
	oldCarry := cpu.C
	cpu.C = value&0x01 != 0
	value >>= 1
	if oldCarry {
		value |= 0x80
	}
	cpu.writeByte(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) inc(address uint16) uint8 {
	value := cpu.readByte(address)
	cpu.writeByte(address, value)
	value++
	cpu.writeByte(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) dec(address uint16) uint8 {
	value := cpu.readByte(address)
	cpu.writeByte(address, value)
	value--
	cpu.writeByte(address, value)
	cpu.setZN(value)
	return 0
}

// Comparison

func (cpu *CPU) cmp(address uint16) uint8 {
	value := cpu.readByte(address)
	cpu.C = cpu.A >= value
	cpu.setZN(cpu.A - value)
	return 0
}

func (cpu *CPU) cpx(address uint16) uint8 {
	value := cpu.readByte(address)
	cpu.C = cpu.X >= value
	cpu.setZN(cpu.X - value)
	return 0
}

func (cpu *CPU) cpy(address uint16) uint8 {
	value := cpu.readByte(address)
	cpu.C = cpu.Y >= value
	cpu.setZN(cpu.Y - value)
	return 0
}

// Register increment/decrement, transfer, stack, flags, control flow.

func (cpu *CPU) inx(uint16) uint8 { cpu.X++; cpu.setZN(cpu.X); return 0 }
func (cpu *CPU) dex(uint16) uint8 { cpu.X--; cpu.setZN(cpu.X); return 0 }
func (cpu *CPU) iny(uint16) uint8 { cpu.Y++; cpu.setZN(cpu.Y); return 0 }
func (cpu *CPU) dey(uint16) uint8 { cpu.Y--; cpu.setZN(cpu.Y); return 0 }

func (cpu *CPU) tax(uint16) uint8 { cpu.X = cpu.A; cpu.setZN(cpu.X); return 0 }
func (cpu *CPU) txa(uint16) uint8 { cpu.A = cpu.X; cpu.setZN(cpu.A); return 0 }
func (cpu *CPU) tay(uint16) uint8 { cpu.Y = cpu.A; cpu.setZN(cpu.Y); return 0 }
func (cpu *CPU) tya(uint16) uint8 { cpu.A = cpu.Y; cpu.setZN(cpu.A); return 0 }
func (cpu *CPU) tsx(uint16) uint8 { cpu.X = cpu.SP; cpu.setZN(cpu.X); return 0 }
func (cpu *CPU) txs(uint16) uint8 { cpu.SP = cpu.X; return 0 }

func (cpu *CPU) pha(uint16) uint8 { cpu.push(cpu.A); return 0 }
func (cpu *CPU) pla(uint16) uint8 { cpu.A = cpu.pop(); cpu.setZN(cpu.A); return 0 }
func (cpu *CPU) php(uint16) uint8 { cpu.push(cpu.GetStatusByte() | bFlagMask); return 0 }
func (cpu *CPU) plp(uint16) uint8 { cpu.SetStatusByte(cpu.pop()); return 0 }

func (cpu *CPU) clc(uint16) uint8 { cpu.C = false; return 0 }
func (cpu *CPU) sec(uint16) uint8 { cpu.C = true; return 0 }
func (cpu *CPU) cli(uint16) uint8 { cpu.I = false; return 0 }
func (cpu *CPU) sei(uint16) uint8 { cpu.I = true; return 0 }
func (cpu *CPU) clv(uint16) uint8 { cpu.V = false; return 0 }
func (cpu *CPU) cld(uint16) uint8 { cpu.D = false; return 0 }
func (cpu *CPU) sed(uint16) uint8 { cpu.D = true; return 0 }

func (cpu *CPU) jmp(address uint16) uint8 { cpu.PC = address; return 0 }

func (cpu *CPU) jsr(address uint16) uint8 {
	cpu.pushWord(cpu.PC - 1)
	cpu.PC = address
	return 0
}

func (cpu *CPU) rts(uint16) uint8 { cpu.PC = cpu.popWord() + 1; return 0 }

func (cpu *CPU) rti(uint16) uint8 {
	cpu.SetStatusByte(cpu.pop())
	cpu.PC = cpu.popWord()
	return 0
}

func (cpu *CPU) branch(address uint16, pageCrossed, taken bool) uint8 {
	if !taken {
		return 0
	}
	cpu.PC = address
	if pageCrossed {
		return 2
	}
	return 1
}

func (cpu *CPU) bcc(a uint16, p bool) uint8 { return cpu.branch(a, p, !cpu.C) }
func (cpu *CPU) bcs(a uint16, p bool) uint8 { return cpu.branch(a, p, cpu.C) }
func (cpu *CPU) bne(a uint16, p bool) uint8 { return cpu.branch(a, p, !cpu.Z) }
func (cpu *CPU) beq(a uint16, p bool) uint8 { return cpu.branch(a, p, cpu.Z) }
func (cpu *CPU) bpl(a uint16, p bool) uint8 { return cpu.branch(a, p, !cpu.N) }
func (cpu *CPU) bmi(a uint16, p bool) uint8 { return cpu.branch(a, p, cpu.N) }
func (cpu *CPU) bvc(a uint16, p bool) uint8 { return cpu.branch(a, p, !cpu.V) }
func (cpu *CPU) bvs(a uint16, p bool) uint8 { return cpu.branch(a, p, cpu.V) }

func (cpu *CPU) bit(address uint16) uint8 {
	value := cpu.readByte(address)
	cpu.N = value&nFlagMask != 0
	cpu.V = value&vFlagMask != 0
	cpu.Z = cpu.A&value == 0
	return 0
}

func (cpu *CPU) nop(uint16) uint8 { return 0 }

// brk pushes PC+2 (the opcode plus its padding byte) and status with B set,
// then vectors through IRQ — spec.md treats BRK as the software-interrupt
// entry point sharing the IRQ vector.
func (cpu *CPU) brk(uint16) uint8 {
	cpu.PC++
	cpu.pushWord(cpu.PC)
	cpu.push(cpu.GetStatusByte() | bFlagMask)
	cpu.I = true
	low := uint16(cpu.readByte(irqVector))
	high := uint16(cpu.readByte(irqVector + 1))
	cpu.PC = (high << 8) | low
	return 0
}

// executeInstruction dispatches the official 6502 instruction set.
// Unofficial opcodes are a declared gap: initInstructions never populates
// their table entries, so Step's nil-instruction fallback (2-cycle no-op,
// PC+1) handles any unofficial byte without reaching this switch.
func (cpu *CPU) executeInstruction(opcode uint8, address uint16, pageCrossed bool) uint8 {
	switch opcode {
	case 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1:
		return cpu.lda(address)
	case 0xA2, 0xA6, 0xB6, 0xAE, 0xBE:
		return cpu.ldx(address)
	case 0xA0, 0xA4, 0xB4, 0xAC, 0xBC:
		return cpu.ldy(address)
	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91:
		return cpu.sta(address)
	case 0x86, 0x96, 0x8E:
		return cpu.stx(address)
	case 0x84, 0x94, 0x8C:
		return cpu.sty(address)

	case 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71:
		return cpu.adc(address)
	case 0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1:
		return cpu.sbc(address)

	case 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31:
		return cpu.and(address)
	case 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11:
		return cpu.ora(address)
	case 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51:
		return cpu.eor(address)

	case 0x0A:
		cpu.C = cpu.A&0x80 != 0
		cpu.A <<= 1
		cpu.setZN(cpu.A)
		return 0
	case 0x06, 0x16, 0x0E, 0x1E:
		return cpu.asl(address)
	case 0x4A:
		cpu.C = cpu.A&0x01 != 0
		cpu.A >>= 1
		cpu.setZN(cpu.A)
		return 0
	case 0x46, 0x56, 0x4E, 0x5E:
		return cpu.lsr(address)
	case 0x2A:
		oldCarry := cpu.C
		cpu.C = cpu.A&0x80 != 0
		cpu.A <<= 1
		if oldCarry {
			cpu.A |= 0x01
		}
		cpu.setZN(cpu.A)
		return 0
	case 0x26, 0x36, 0x2E, 0x3E:
		return cpu.rol(address)
	case 0x6A:
		oldCarry := cpu.C
		cpu.C = cpu.A&0x01 != 0
		cpu.A >>= 1
		if oldCarry {
			cpu.A |= 0x80
		}
		cpu.setZN(cpu.A)
		return 0
	case 0x66, 0x76, 0x6E, 0x7E:
		return cpu.ror(address)

	case 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1:
		return cpu.cmp(address)
	case 0xE0, 0xE4, 0xEC:
		return cpu.cpx(address)
	case 0xC0, 0xC4, 0xCC:
		return cpu.cpy(address)

	case 0xE6, 0xF6, 0xEE, 0xFE:
		return cpu.inc(address)
	case 0xC6, 0xD6, 0xCE, 0xDE:
		return cpu.dec(address)
	case 0xE8:
		return cpu.inx(address)
	case 0xCA:
		return cpu.dex(address)
	case 0xC8:
		return cpu.iny(address)
	case 0x88:
		return cpu.dey(address)

	case 0xAA:
		return cpu.tax(address)
	case 0x8A:
		return cpu.txa(address)
	case 0xA8:
		return cpu.tay(address)
	case 0x98:
		return cpu.tya(address)
	case 0xBA:
		return cpu.tsx(address)
	case 0x9A:
		return cpu.txs(address)

	case 0x48:
		return cpu.pha(address)
	case 0x68:
		return cpu.pla(address)
	case 0x08:
		return cpu.php(address)
	case 0x28:
		return cpu.plp(address)

	case 0x18:
		return cpu.clc(address)
	case 0x38:
		return cpu.sec(address)
	case 0x58:
		return cpu.cli(address)
	case 0x78:
		return cpu.sei(address)
	case 0xB8:
		return cpu.clv(address)
	case 0xD8:
		return cpu.cld(address)
	case 0xF8:
		return cpu.sed(address)

	case 0x4C, 0x6C:
		return cpu.jmp(address)
	case 0x20:
		return cpu.jsr(address)
	case 0x60:
		return cpu.rts(address)
	case 0x40:
		return cpu.rti(address)

	case 0x90:
		return cpu.bcc(address, pageCrossed)
	case 0xB0:
		return cpu.bcs(address, pageCrossed)
	case 0xD0:
		return cpu.bne(address, pageCrossed)
	case 0xF0:
		return cpu.beq(address, pageCrossed)
	case 0x10:
		return cpu.bpl(address, pageCrossed)
	case 0x30:
		return cpu.bmi(address, pageCrossed)
	case 0x50:
		return cpu.bvc(address, pageCrossed)
	case 0x70:
		return cpu.bvs(address, pageCrossed)

	case 0x24, 0x2C:
		return cpu.bit(address)
	case 0x00:
		return cpu.brk(address)
	case 0xEA:
		return cpu.nop(address)

	default:
		return 0
	}
}

func (cpu *CPU) initInstructions() {
	add := func(name string, opcode uint8, bytes, cycles uint8, mode AddressingMode) {
		cpu.instructions[opcode] = &Instruction{name, opcode, bytes, cycles, mode}
	}

	add("LDA", 0xA9, 2, 2, Immediate)
	add("LDA", 0xA5, 2, 3, ZeroPage)
	add("LDA", 0xB5, 2, 4, ZeroPageX)
	add("LDA", 0xAD, 3, 4, Absolute)
	add("LDA", 0xBD, 3, 4, AbsoluteX)
	add("LDA", 0xB9, 3, 4, AbsoluteY)
	add("LDA", 0xA1, 2, 6, IndexedIndirect)
	add("LDA", 0xB1, 2, 5, IndirectIndexed)

	add("LDX", 0xA2, 2, 2, Immediate)
	add("LDX", 0xA6, 2, 3, ZeroPage)
	add("LDX", 0xB6, 2, 4, ZeroPageY)
	add("LDX", 0xAE, 3, 4, Absolute)
	add("LDX", 0xBE, 3, 4, AbsoluteY)

	add("LDY", 0xA0, 2, 2, Immediate)
	add("LDY", 0xA4, 2, 3, ZeroPage)
	add("LDY", 0xB4, 2, 4, ZeroPageX)
	add("LDY", 0xAC, 3, 4, Absolute)
	add("LDY", 0xBC, 3, 4, AbsoluteX)

	add("STA", 0x85, 2, 3, ZeroPage)
	add("STA", 0x95, 2, 4, ZeroPageX)
	add("STA", 0x8D, 3, 4, Absolute)
	add("STA", 0x9D, 3, 5, AbsoluteX)
	add("STA", 0x99, 3, 5, AbsoluteY)
	add("STA", 0x81, 2, 6, IndexedIndirect)
	add("STA", 0x91, 2, 6, IndirectIndexed)

	add("STX", 0x86, 2, 3, ZeroPage)
	add("STX", 0x96, 2, 4, ZeroPageY)
	add("STX", 0x8E, 3, 4, Absolute)

	add("STY", 0x84, 2, 3, ZeroPage)
	add("STY", 0x94, 2, 4, ZeroPageX)
	add("STY", 0x8C, 3, 4, Absolute)

	add("ADC", 0x69, 2, 2, Immediate)
	add("ADC", 0x65, 2, 3, ZeroPage)
	add("ADC", 0x75, 2, 4, ZeroPageX)
	add("ADC", 0x6D, 3, 4, Absolute)
	add("ADC", 0x7D, 3, 4, AbsoluteX)
	add("ADC", 0x79, 3, 4, AbsoluteY)
	add("ADC", 0x61, 2, 6, IndexedIndirect)
	add("ADC", 0x71, 2, 5, IndirectIndexed)

	add("SBC", 0xE9, 2, 2, Immediate)
	add("SBC", 0xE5, 2, 3, ZeroPage)
	add("SBC", 0xF5, 2, 4, ZeroPageX)
	add("SBC", 0xED, 3, 4, Absolute)
	add("SBC", 0xFD, 3, 4, AbsoluteX)
	add("SBC", 0xF9, 3, 4, AbsoluteY)
	add("SBC", 0xE1, 2, 6, IndexedIndirect)
	add("SBC", 0xF1, 2, 5, IndirectIndexed)

	add("AND", 0x29, 2, 2, Immediate)
	add("AND", 0x25, 2, 3, ZeroPage)
	add("AND", 0x35, 2, 4, ZeroPageX)
	add("AND", 0x2D, 3, 4, Absolute)
	add("AND", 0x3D, 3, 4, AbsoluteX)
	add("AND", 0x39, 3, 4, AbsoluteY)
	add("AND", 0x21, 2, 6, IndexedIndirect)
	add("AND", 0x31, 2, 5, IndirectIndexed)

	add("ORA", 0x09, 2, 2, Immediate)
	add("ORA", 0x05, 2, 3, ZeroPage)
	add("ORA", 0x15, 2, 4, ZeroPageX)
	add("ORA", 0x0D, 3, 4, Absolute)
	add("ORA", 0x1D, 3, 4, AbsoluteX)
	add("ORA", 0x19, 3, 4, AbsoluteY)
	add("ORA", 0x01, 2, 6, IndexedIndirect)
	add("ORA", 0x11, 2, 5, IndirectIndexed)

	add("EOR", 0x49, 2, 2, Immediate)
	add("EOR", 0x45, 2, 3, ZeroPage)
	add("EOR", 0x55, 2, 4, ZeroPageX)
	add("EOR", 0x4D, 3, 4, Absolute)
	add("EOR", 0x5D, 3, 4, AbsoluteX)
	add("EOR", 0x59, 3, 4, AbsoluteY)
	add("EOR", 0x41, 2, 6, IndexedIndirect)
	add("EOR", 0x51, 2, 5, IndirectIndexed)

	add("ASL", 0x0A, 1, 2, Accumulator)
	add("ASL", 0x06, 2, 5, ZeroPage)
	add("ASL", 0x16, 2, 6, ZeroPageX)
	add("ASL", 0x0E, 3, 6, Absolute)
	add("ASL", 0x1E, 3, 7, AbsoluteX)

	add("LSR", 0x4A, 1, 2, Accumulator)
	add("LSR", 0x46, 2, 5, ZeroPage)
	add("LSR", 0x56, 2, 6, ZeroPageX)
	add("LSR", 0x4E, 3, 6, Absolute)
	add("LSR", 0x5E, 3, 7, AbsoluteX)

	add("ROL", 0x2A, 1, 2, Accumulator)
	add("ROL", 0x26, 2, 5, ZeroPage)
	add("ROL", 0x36, 2, 6, ZeroPageX)
	add("ROL", 0x2E, 3, 6, Absolute)
	add("ROL", 0x3E, 3, 7, AbsoluteX)

	add("ROR", 0x6A, 1, 2, Accumulator)
	add("ROR", 0x66, 2, 5, ZeroPage)
	add("ROR", 0x76, 2, 6, ZeroPageX)
	add("ROR", 0x6E, 3, 6, Absolute)
	add("ROR", 0x7E, 3, 7, AbsoluteX)

	add("CMP", 0xC9, 2, 2, Immediate)
	add("CMP", 0xC5, 2, 3, ZeroPage)
	add("CMP", 0xD5, 2, 4, ZeroPageX)
	add("CMP", 0xCD, 3, 4, Absolute)
	add("CMP", 0xDD, 3, 4, AbsoluteX)
	add("CMP", 0xD9, 3, 4, AbsoluteY)
	add("CMP", 0xC1, 2, 6, IndexedIndirect)
	add("CMP", 0xD1, 2, 5, IndirectIndexed)

	add("CPX", 0xE0, 2, 2, Immediate)
	add("CPX", 0xE4, 2, 3, ZeroPage)
	add("CPX", 0xEC, 3, 4, Absolute)

	add("CPY", 0xC0, 2, 2, Immediate)
	add("CPY", 0xC4, 2, 3, ZeroPage)
	add("CPY", 0xCC, 3, 4, Absolute)

	add("INC", 0xE6, 2, 5, ZeroPage)
	add("INC", 0xF6, 2, 6, ZeroPageX)
	add("INC", 0xEE, 3, 6, Absolute)
	add("INC", 0xFE, 3, 7, AbsoluteX)

	add("DEC", 0xC6, 2, 5, ZeroPage)
	add("DEC", 0xD6, 2, 6, ZeroPageX)
	add("DEC", 0xCE, 3, 6, Absolute)
	add("DEC", 0xDE, 3, 7, AbsoluteX)

	add("INX", 0xE8, 1, 2, Implied)
	add("DEX", 0xCA, 1, 2, Implied)
	add("INY", 0xC8, 1, 2, Implied)
	add("DEY", 0x88, 1, 2, Implied)

	add("TAX", 0xAA, 1, 2, Implied)
	add("TXA", 0x8A, 1, 2, Implied)
	add("TAY", 0xA8, 1, 2, Implied)
	add("TYA", 0x98, 1, 2, Implied)
	add("TSX", 0xBA, 1, 2, Implied)
	add("TXS", 0x9A, 1, 2, Implied)

	add("PHA", 0x48, 1, 3, Implied)
	add("PLA", 0x68, 1, 4, Implied)
	add("PHP", 0x08, 1, 3, Implied)
	add("PLP", 0x28, 1, 4, Implied)

	add("CLC", 0x18, 1, 2, Implied)
	add("SEC", 0x38, 1, 2, Implied)
	add("CLI", 0x58, 1, 2, Implied)
	add("SEI", 0x78, 1, 2, Implied)
	add("CLV", 0xB8, 1, 2, Implied)
	add("CLD", 0xD8, 1, 2, Implied)
	add("SED", 0xF8, 1, 2, Implied)

	add("JMP", 0x4C, 3, 3, Absolute)
	add("JMP", 0x6C, 3, 5, Indirect)
	add("JSR", 0x20, 3, 6, Absolute)
	add("RTS", 0x60, 1, 6, Implied)
	add("RTI", 0x40, 1, 6, Implied)

	add("BCC", 0x90, 2, 2, Relative)
	add("BCS", 0xB0, 2, 2, Relative)
	add("BNE", 0xD0, 2, 2, Relative)
	add("BEQ", 0xF0, 2, 2, Relative)
	add("BPL", 0x10, 2, 2, Relative)
	add("BMI", 0x30, 2, 2, Relative)
	add("BVC", 0x50, 2, 2, Relative)
	add("BVS", 0x70, 2, 2, Relative)

	add("BIT", 0x24, 2, 3, ZeroPage)
	add("BIT", 0x2C, 3, 4, Absolute)
	add("NOP", 0xEA, 1, 2, Implied)
	add("BRK", 0x00, 1, 7, Implied)
}
