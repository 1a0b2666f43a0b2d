package input

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestControllerDoubleReadWithinOneInstructionReturnsSameBit(t *testing.T) {
	c := NewController()
	c.SetButton(ButtonA, true)  // bit 0
	c.SetButton(ButtonB, false) // bit 1

	c.Write(1)
	c.Write(0) // strobe falls, shift register reloads and freezes

	first := c.Read()
	second := c.Read() // same instruction reading twice before Advance
	require.Equal(t, first, second, "the register must not advance until Advance is called")
	require.Equal(t, uint8(1), first&1, "button A is bit 0")

	c.Advance()
	third := c.Read()
	require.Equal(t, uint8(0), third&1, "button B, which is not held, is bit 1")
}

func TestControllerOnlyAdvancesWhenMarkedRead(t *testing.T) {
	c := NewController()
	c.SetButton(ButtonA, true)
	c.Write(1)
	c.Write(0)

	c.Advance() // no Read happened yet this "instruction" — must be a no-op
	require.Equal(t, uint8(1), c.Read()&1, "bit 0 is still button A")
}

func TestControllerReturnsOneAfterEighthBit(t *testing.T) {
	c := NewController()
	c.Write(1)
	c.Write(0) // all buttons released

	for i := 0; i < 8; i++ {
		bit := c.Read() & 1
		require.Equal(t, uint8(0), bit, "bit %d of an all-released pad is 0", i)
		c.Advance()
	}

	require.Equal(t, uint8(1), c.Read()&1, "reads past the 8th bit return 1 until re-strobed")
	require.Equal(t, uint8(1), c.Read()&1)
}

func TestControllerOpenBusApproximation(t *testing.T) {
	c := NewController()
	require.Equal(t, uint8(openBusApprox), c.Read()&openBusApprox)
}

func TestControllerStrobeHighAlwaysReflectsLiveButtonA(t *testing.T) {
	c := NewController()
	c.Write(1) // strobe held high

	c.SetButton(ButtonA, true)
	require.Equal(t, uint8(1), c.Read()&1)

	c.SetButton(ButtonA, false)
	require.Equal(t, uint8(0), c.Read()&1, "reads while strobed track the live button state")
}

func TestDevicesWriteStrobeReachesBothPorts(t *testing.T) {
	d := NewDevices()
	d.Pad1.SetButton(ButtonA, true)
	d.Pad2.SetButton(ButtonA, true)

	d.WriteStrobe(1)
	d.WriteStrobe(0)

	require.Equal(t, uint8(1), d.Pad1.Read()&1)
	require.Equal(t, uint8(1), d.Pad2.Read()&1)
}

func TestDevicesSerializeRoundTrip(t *testing.T) {
	d := NewDevices()
	d.Pad1.SetButton(ButtonStart, true)
	d.Pad1.Write(1)
	d.Zapper.Move(100, 50)
	d.Zapper.TriggerDown()

	data := d.Serialize()

	restored := NewDevices()
	require.NoError(t, restored.Deserialize(data))
	require.True(t, restored.Pad1.IsPressed(ButtonStart))
	require.Equal(t, 100, restored.Zapper.x)
	require.Equal(t, 50, restored.Zapper.y)
	require.True(t, restored.Zapper.triggerHeld)
}
