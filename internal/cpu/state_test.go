package cpu

import "testing"

func TestSerializeRoundTrip(t *testing.T) {
	c, _ := newTestCPU()
	c.A, c.X, c.Y = 0x11, 0x22, 0x33
	c.SP = 0xF0
	c.PC = 0xC000
	c.N, c.V, c.C = true, true, true
	c.cycles = 123456
	c.openBus = 0x77
	c.irqLine = true
	c.dmaStallCycles = 7

	data := c.Serialize()

	restored, _ := newTestCPU()
	if err := restored.Deserialize(data); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if restored.A != c.A || restored.X != c.X || restored.Y != c.Y {
		t.Fatalf("registers not restored: got A=%#x X=%#x Y=%#x", restored.A, restored.X, restored.Y)
	}
	if restored.SP != c.SP || restored.PC != c.PC {
		t.Fatalf("SP/PC not restored: got SP=%#x PC=%#x", restored.SP, restored.PC)
	}
	if !restored.N || !restored.V || !restored.C {
		t.Fatalf("flags not restored")
	}
	if restored.cycles != c.cycles || restored.openBus != c.openBus {
		t.Fatalf("cycles/open bus not restored")
	}
	if !restored.irqLine || restored.dmaStallCycles != c.dmaStallCycles {
		t.Fatalf("irq line/dma stall not restored")
	}
}
