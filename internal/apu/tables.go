package apu

// lengthTable maps a 5-bit length-load value to the initial length-counter
// value it loads.
var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6,
	160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 8, 48, 6, 96, 4,
	192, 2, 72, 16, 28, 32, 52, 2,
}

// dutyTable is the 8-step waveform for each of the four pulse duty cycles.
var dutyTable = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0}, // 12.5%
	{0, 1, 1, 0, 0, 0, 0, 0}, // 25%
	{0, 1, 1, 1, 1, 0, 0, 0}, // 50%
	{1, 0, 0, 1, 1, 1, 1, 1}, // 75%
}

// triangleTable is the 32-step triangle wave sequence.
var triangleTable = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

// noisePeriodTable holds the NTSC noise timer periods, already expressed
// in CPU cycles.
var noisePeriodTable = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160,
	202, 254, 380, 508, 762, 1016, 2034, 4068,
}

// dmcRateTable holds the NTSC DMC timer periods, in CPU cycles.
var dmcRateTable = [16]uint16{
	428, 380, 340, 320, 286, 254, 226, 214,
	190, 160, 142, 128, 106, 84, 72, 54,
}

// squareTable and tndTable are the non-linear mixer lookup tables from
// spec.md §4.4, built once at package init. Each is oversampled 16x over
// the classic integer-indexed tables so a fractionally pan-weighted
// channel sum can still land on a representative entry instead of being
// truncated to its nearest integer first.
var (
	squareTable [31 * 16]float64
	tndTable    [203 * 16]float64
)

func init() {
	for i := range squareTable {
		n := float64(i) / 16.0
		if n == 0 {
			continue
		}
		squareTable[i] = 95.52 / (8128.0/n + 100.0)
	}
	for i := range tndTable {
		n := float64(i) / 16.0
		if n == 0 {
			continue
		}
		tndTable[i] = 163.67 / (24329.0/n + 100.0)
	}
}
