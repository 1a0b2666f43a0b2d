package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeBus is a flat 64KiB address space with an access log, enough to
// exercise addressing modes, RMW double-writes, and the open-bus contract
// without needing the full console wiring.
type fakeBus struct {
	mem  [65536]uint8
	log  []access
}

type access struct {
	write bool
	addr  uint16
	value uint8
}

func (b *fakeBus) Read(addr uint16) (uint8, bool) {
	b.log = append(b.log, access{false, addr, b.mem[addr]})
	return b.mem[addr], true
}

func (b *fakeBus) Write(addr uint16, value uint8) {
	b.log = append(b.log, access{true, addr, value})
	b.mem[addr] = value
}

func newTestCPU() (*CPU, *fakeBus) {
	bus := &fakeBus{}
	c := New(bus)
	c.PC = 0x8000
	return c, bus
}

func TestOpenBusUpdatesOnReadAndWrite(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x8000] = 0xA9 // LDA #$42
	bus.mem[0x8001] = 0x42
	c.Step()
	require.Equal(t, uint8(0x42), c.OpenBus())

	bus.mem[0x8002] = 0x85 // STA $10
	bus.mem[0x8003] = 0x10
	c.Step()
	require.Equal(t, uint8(0x42), c.OpenBus())
	require.Equal(t, uint8(0x42), bus.mem[0x10])
}

func TestRMWWritesOriginalThenModified(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x10] = 0x01
	bus.mem[0x8000] = 0x06 // ASL $10 (zero page)
	bus.mem[0x8001] = 0x10
	c.Step()

	var writes []access
	for _, a := range bus.log {
		if a.write && a.addr == 0x10 {
			writes = append(writes, a)
		}
	}
	require.Len(t, writes, 2)
	require.Equal(t, uint8(0x01), writes[0].value, "first write restores the original value")
	require.Equal(t, uint8(0x02), writes[1].value, "second write stores the shifted value")
}

func TestAbsoluteXPageCrossDummyRead(t *testing.T) {
	c, bus := newTestCPU()
	c.X = 0xFF
	bus.mem[0x8000] = 0xBD // LDA $8101,X -> crosses from $8101+$FF=$8200
	bus.mem[0x8001] = 0x01
	bus.mem[0x8002] = 0x81
	bus.mem[0x8200] = 0x55
	cycles := c.Step()

	require.Equal(t, uint8(0x55), c.A)
	require.Equal(t, uint64(5), cycles, "page-crossing LDA absolute,X costs one extra cycle")

	foundDummy := false
	for _, a := range bus.log {
		if !a.write && a.addr == 0x8100 {
			foundDummy = true
		}
	}
	require.True(t, foundDummy, "expected a dummy read at the unfixed (wrong-page) address")
}

func TestNoPageCrossNoExtraCycle(t *testing.T) {
	c, bus := newTestCPU()
	c.X = 0x01
	bus.mem[0x8000] = 0xBD // LDA $8010,X -> $8011, same page
	bus.mem[0x8001] = 0x10
	bus.mem[0x8002] = 0x80
	bus.mem[0x8011] = 0x77
	cycles := c.Step()
	require.Equal(t, uint64(4), cycles)
}

func TestInterruptDispatchOrderResetBeatsNMI(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[resetVector] = 0x00
	bus.mem[resetVector+1] = 0x90
	c.RequestReset()
	c.SetNMI(true)
	c.SetNMI(true) // second call: no new edge, still pending from RequestReset's priority
	c.Step()
	require.Equal(t, uint16(0x9000), c.PC, "RESET takes priority over a pending NMI")
}

func TestNMIEdgeTriggered(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x8000] = 0xEA // NOP
	bus.mem[nmiVector] = 0x00
	bus.mem[nmiVector+1] = 0xA0
	c.SetNMI(true) // rising edge: latches pending
	c.Step()       // services the NMI instead of the NOP
	require.Equal(t, uint16(0xA000), c.PC)
}

func TestIRQRespectsInterruptDisableFlag(t *testing.T) {
	c, bus := newTestCPU()
	c.I = true
	c.SetIRQ(true)
	bus.mem[0x8000] = 0xEA
	c.Step()
	require.Equal(t, uint16(0x8001), c.PC, "IRQ must not dispatch while I flag is set")
}

func TestOAMDMAStallsCPU(t *testing.T) {
	c, bus := newTestCPU()
	c.cycles = 0
	bus.mem[0x8000] = 0x8D // STA $4014 absolute
	bus.mem[0x8001] = 0x14
	bus.mem[0x8002] = 0x40
	cycles := c.Step()
	require.GreaterOrEqual(t, cycles, uint64(513+4), "DMA stall is added to the triggering instruction's cycle count")
}

func TestZeroPageXWraps(t *testing.T) {
	c, bus := newTestCPU()
	c.X = 0xFF
	bus.mem[0x8000] = 0xB5 // LDA $80,X -> wraps to $7F
	bus.mem[0x8001] = 0x80
	bus.mem[0x007F] = 0x33
	c.Step()
	require.Equal(t, uint8(0x33), c.A)
}

func TestIndirectJMPPageWrapBug(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x8000] = 0x6C // JMP ($30FF)
	bus.mem[0x8001] = 0xFF
	bus.mem[0x8002] = 0x30
	bus.mem[0x30FF] = 0x00
	bus.mem[0x3000] = 0x40 // high byte wrongly read from $3000, not $3100
	c.Step()
	require.Equal(t, uint16(0x4000), c.PC)
}
