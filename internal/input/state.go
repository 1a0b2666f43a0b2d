package input

import "encoding/json"

const inputStateVersion = 1

type controllerState struct {
	Buttons       uint8 `json:"buttons"`
	Strobe        bool  `json:"strobe"`
	ShiftRegister uint8 `json:"shift_register"`
	BitsRead      uint8 `json:"bits_read"`
}

type zapperState struct {
	X           int  `json:"x"`
	Y           int  `json:"y"`
	TriggerHeld bool `json:"trigger_held"`
}

type devicesState struct {
	Version int             `json:"version"`
	Pad1    controllerState `json:"pad1"`
	Pad2    controllerState `json:"pad2"`
	Zapper  zapperState     `json:"zapper"`
}

func snapshotController(c *Controller) controllerState {
	return controllerState{
		Buttons:       c.buttons,
		Strobe:        c.strobe,
		ShiftRegister: c.shiftRegister,
		BitsRead:      c.bitsRead,
	}
}

func restoreController(c *Controller, s controllerState) {
	c.buttons = s.Buttons
	c.strobe = s.Strobe
	c.shiftRegister = s.ShiftRegister
	c.bitsRead = s.BitsRead
	c.markedRead = false
}

// Serialize captures both controller ports and the zapper as a versioned
// JSON document, following the pattern established by internal/ppu and
// internal/apu's per-component state.
func (d *Devices) Serialize() json.RawMessage {
	s := devicesState{
		Version: inputStateVersion,
		Pad1:    snapshotController(d.Pad1),
		Pad2:    snapshotController(d.Pad2),
		Zapper:  zapperState{X: d.Zapper.x, Y: d.Zapper.y, TriggerHeld: d.Zapper.triggerHeld},
	}
	data, err := json.Marshal(s)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

// Deserialize restores a previously captured state.
func (d *Devices) Deserialize(data json.RawMessage) error {
	var s devicesState
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	restoreController(d.Pad1, s.Pad1)
	restoreController(d.Pad2, s.Pad2)
	d.Zapper.x = s.Zapper.X
	d.Zapper.y = s.Zapper.Y
	d.Zapper.triggerHeld = s.Zapper.TriggerHeld
	return nil
}
