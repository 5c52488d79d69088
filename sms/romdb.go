package sms

// ROMInfo carries the mapper and region for a known ROM.
type ROMInfo struct {
	Mapper MapperType
	Region Region
}

// romDatabase maps ROM CRC32 hashes to mapper and region information for
// titles that need more than header detection: Codemasters-mapper games and
// PAL-only releases.
var romDatabase = map[uint32]ROMInfo{
	// Ace of Aces
	0x887d9f6b: {MapperSega, RegionPAL},
	// The Addams Family
	0x72420f38: {MapperSega, RegionPAL},
	// Aerial Assault (PAL)
	0xecf491cf: {MapperSega, RegionPAL},
	// Air Rescue
	0x8b43d21d: {MapperSega, RegionPAL},
	// Aladdin
	0xc8718d40: {MapperSega, RegionPAL},
	// Alex Kidd in Miracle World (NTSC)
	0x50a8e8a7: {MapperSega, RegionNTSC},
	// Action Fighter (PAL)
	0x8418f438: {MapperSega, RegionPAL},
	// After Burner
	0x1c951f8e: {MapperSega, RegionNTSC},
	// Cosmic Spacehead (Codemasters)
	0x29822980: {MapperCodemasters, RegionPAL},
	// Fantastic Dizzy (Codemasters)
	0xb9664ae1: {MapperCodemasters, RegionPAL},
	// Micro Machines (PAL, Codemasters)
	0xa577ce46: {MapperCodemasters, RegionPAL},
	// Micro Machines (NTSC version)
	0xa567a0c6: {MapperCodemasters, RegionNTSC},
	// Phantasy Star (NTSC)
	0x07301f83: {MapperSega, RegionNTSC},
	// Phantasy Star (PAL)
	0xdf96f194: {MapperSega, RegionPAL},
	// Sonic the Hedgehog
	0xb519e833: {MapperSega, RegionNTSC},
	// Sonic the Hedgehog 2
	0x5b3b922c: {MapperSega, RegionPAL},
	// Wonder Boy III: The Dragon's Trap
	0x679e1676: {MapperSega, RegionNTSC},
}
