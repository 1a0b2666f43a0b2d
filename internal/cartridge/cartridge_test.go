package cartridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildINES(prgBanks, chrBanks int, flags6, flags7 uint8, extra ...uint8) []uint8 {
	header := make([]uint8, headerSize)
	copy(header[0:4], []byte("NES\x1A"))
	header[4] = uint8(prgBanks)
	header[5] = uint8(chrBanks)
	header[6] = flags6
	header[7] = flags7
	for i, b := range extra {
		header[8+i] = b
	}
	buf := append([]uint8(nil), header...)
	buf = append(buf, make([]uint8, prgBanks*prgBankSize)...)
	buf = append(buf, make([]uint8, chrBanks*chrBankSize)...)
	return buf
}

func TestLoadNROM(t *testing.T) {
	data := buildINES(2, 1, 0x01, 0x00) // vertical mirroring, mapper 0
	rom, err := Load(data)
	require.NoError(t, err)
	require.Equal(t, 2*prgBankSize, len(rom.PRG))
	require.Equal(t, chrBankSize, len(rom.CHR))
	require.Equal(t, MirrorVertical, rom.Mirror)
	require.EqualValues(t, 0, rom.MapperID)
	require.False(t, rom.HasCHRRAM())
}

func TestLoadMapperIDAcrossNibbles(t *testing.T) {
	// mapper 1 (MMC1): low nibble of flags6 bits 4-7 = 1, high nibble flags7 = 0
	data := buildINES(2, 1, 0x10, 0x00)
	rom, err := Load(data)
	require.NoError(t, err)
	require.EqualValues(t, 1, rom.MapperID)
}

func TestLoadNES20MapperID(t *testing.T) {
	// mapper id 0x141: low nibble 0x1 in flags6>>4, mid 0x40 in flags7, high nibble 0x1 in byte8
	data := buildINES(2, 1, 0x18, 0x48, 0x01)
	rom, err := Load(data)
	require.NoError(t, err)
	require.True(t, rom.IsNES20)
	require.EqualValues(t, 0x141, rom.MapperID)
}

func TestLoadBadMagic(t *testing.T) {
	data := buildINES(1, 1, 0, 0)
	data[0] = 'X'
	_, err := Load(data)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestLoadTruncated(t *testing.T) {
	data := buildINES(2, 1, 0, 0)
	data = data[:len(data)-100]
	_, err := Load(data)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestFourScreenOverridesMirrorBit(t *testing.T) {
	data := buildINES(1, 1, 0x08|0x01, 0x00)
	rom, err := Load(data)
	require.NoError(t, err)
	require.Equal(t, MirrorFourScreen, rom.Mirror)
}

func TestCHRRAMWhenZeroBanks(t *testing.T) {
	data := buildINES(1, 0, 0, 0)
	rom, err := Load(data)
	require.NoError(t, err)
	require.True(t, rom.HasCHRRAM())
	require.Equal(t, 0, rom.CHRBankCount8K())
}

func TestTrainerOffsetsPRG(t *testing.T) {
	header := make([]uint8, headerSize)
	copy(header[0:4], []byte("NES\x1A"))
	header[4] = 1
	header[5] = 1
	header[6] = 0x04 // trainer present
	buf := append([]uint8(nil), header...)
	buf = append(buf, make([]uint8, trainerSize)...)
	prg := make([]uint8, prgBankSize)
	prg[0] = 0x42
	buf = append(buf, prg...)
	buf = append(buf, make([]uint8, chrBankSize)...)

	rom, err := Load(buf)
	require.NoError(t, err)
	require.True(t, rom.HasTrainer)
	require.EqualValues(t, 0x42, rom.PRG[0])
}
