package ppu

import (
	"encoding/json"

	"github.com/nesgo/nescore/internal/cartridge"
)

// state is the versioned save-state document for the PPU: registers, loopy
// scroll state, nametable/palette/OAM RAM, timing position, warm-up state
// and the mirroring mode.
type state struct {
	Version int `json:"version"`

	PPUCtrl                     uint8  `json:"ppu_ctrl,omitempty"`
	PPUMask                     uint8  `json:"ppu_mask,omitempty"`
	PPUStatus                   uint8  `json:"ppu_status,omitempty"`
	OAMAddr                     uint8  `json:"oam_addr,omitempty"`
	IOLatch                     uint8  `json:"io_latch,omitempty"`
	V                           uint16 `json:"v,omitempty"`
	T                           uint16 `json:"t,omitempty"`
	X                           uint8  `json:"x,omitempty"`
	W                           bool   `json:"w,omitempty"`
	ReadBuffer                  uint8  `json:"read_buffer,omitempty"`

	Nametables      [0x800]uint8 `json:"nametables"`
	FourScreenExtra [0x800]uint8 `json:"four_screen_extra"`
	Palette         [32]uint8    `json:"palette"`
	OAM             [256]uint8   `json:"oam"`

	Scanline int    `json:"scanline"`
	Dot      int    `json:"dot"`
	Frame    uint64 `json:"frame"`
	OddFrame bool   `json:"odd_frame,omitempty"`

	WarmingUp           bool `json:"warming_up,omitempty"`
	WarmupDotsRemaining int  `json:"warmup_dots_remaining,omitempty"`

	Mirror uint8 `json:"mirror"`
}

const ppuStateVersion = 1

// Serialize captures the fields listed in state. The background and sprite
// pipelines (shift registers, fetch latches, secondary OAM and the sprites
// loaded for the current line), a pending NMI and its delay, a pending
// VBlank suppression, the A12 filter history and the frame buffer are not
// saved.
func (p *PPU) Serialize() json.RawMessage {
	s := state{
		Version:             ppuStateVersion,
		PPUCtrl:             p.ppuCtrl,
		PPUMask:             p.ppuMask,
		PPUStatus:           p.ppuStatus,
		OAMAddr:             p.oamAddr,
		IOLatch:             p.ioLatch,
		V:                   p.v,
		T:                   p.t,
		X:                   p.x,
		W:                   p.w,
		ReadBuffer:          p.readBuffer,
		Nametables:          p.nametables,
		FourScreenExtra:     p.fourScreenExtra,
		Palette:             p.palette,
		OAM:                 p.oam,
		Scanline:            p.scanline,
		Dot:                 p.dot,
		Frame:               p.frame,
		OddFrame:            p.oddFrame,
		WarmingUp:           p.warmingUp,
		WarmupDotsRemaining: p.warmupDotsRemaining,
		Mirror:              uint8(p.mirror),
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return json.RawMessage("{}")
	}
	return raw
}

// Deserialize restores state previously produced by Serialize.
func (p *PPU) Deserialize(data json.RawMessage) error {
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	p.ppuCtrl = s.PPUCtrl
	p.ppuMask = s.PPUMask
	p.ppuStatus = s.PPUStatus
	p.oamAddr = s.OAMAddr
	p.ioLatch = s.IOLatch
	p.v = s.V
	p.t = s.T
	p.x = s.X
	p.w = s.W
	p.readBuffer = s.ReadBuffer
	p.nametables = s.Nametables
	p.fourScreenExtra = s.FourScreenExtra
	p.palette = s.Palette
	p.oam = s.OAM
	p.scanline = s.Scanline
	p.dot = s.Dot
	p.frame = s.Frame
	p.oddFrame = s.OddFrame
	p.warmingUp = s.WarmingUp
	p.warmupDotsRemaining = s.WarmupDotsRemaining
	p.mirror = cartridge.MirrorMode(s.Mirror)
	return nil
}
