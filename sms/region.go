package sms

import (
	"hash/crc32"

	emucore "github.com/user-none/eblitui/api"
)

// Region is an alias for emucore.Region so host code can pass regions
// through without conversion.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// RegionTiming holds the clock and frame constants for a video region.
type RegionTiming struct {
	CPUClockHz int
	Scanlines  int
	FPS        int
}

// NTSC: 3.579545 MHz, 262 scanlines, 60 Hz
var NTSCTiming = RegionTiming{
	CPUClockHz: 3579545,
	Scanlines:  262,
	FPS:        60,
}

// PAL: 3.546893 MHz, 313 scanlines, 50 Hz
var PALTiming = RegionTiming{
	CPUClockHz: 3546893,
	Scanlines:  313,
	FPS:        50,
}

// TimingForRegion returns the timing constants for a region.
func TimingForRegion(r Region) RegionTiming {
	if r == RegionPAL {
		return PALTiming
	}
	return NTSCTiming
}

// DetectRegionFromROM looks the ROM up by CRC32 and returns its region.
// The second result is false when the ROM is unknown; NTSC is the fallback
// since SMS headers do not distinguish PAL from NTSC exports.
func DetectRegionFromROM(rom []byte) (Region, bool) {
	if info, ok := romDatabase[crc32.ChecksumIEEE(rom)]; ok {
		return info.Region, true
	}
	return RegionNTSC, false
}

// Nationality is the console nationality, which selects controller port
// behavior. It is orthogonal to Region: Japanese consoles are always NTSC
// but export consoles can be either.
type Nationality int

const (
	NationalityExport Nationality = iota
	NationalityJapanese
)

func (n Nationality) String() string {
	if n == NationalityJapanese {
		return "Japanese"
	}
	return "Export"
}

// DetectNationalityFromROM reads the cartridge header at $7FF0 and returns
// the console nationality the ROM targets. Missing or unrecognizable
// headers default to Export.
func DetectNationalityFromROM(rom []byte) Nationality {
	if len(rom) < 0x8000 {
		return NationalityExport
	}
	if string(rom[0x7FF0:0x7FF8]) != "TMR SEGA" {
		return NationalityExport
	}
	if rom[0x7FFF]>>4 == 3 { // SMS Japan region code
		return NationalityJapanese
	}
	return NationalityExport
}
