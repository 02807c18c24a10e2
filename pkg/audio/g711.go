package audio

// G.711 companding, 8-bit mu-law/A-law per sample against 16-bit linear PCM.

const (
	ulawBias = 0x84
	pcmClip  = 32635
)

func linearToULaw(sample int16) byte {
	s := int(sample)
	sign := byte(0)
	if s < 0 {
		s = -s
		sign = 0x80
	}
	if s > pcmClip {
		s = pcmClip
	}
	s += ulawBias
	exp := 7
	for mask := 0x4000; s&mask == 0 && exp > 0; mask >>= 1 {
		exp--
	}
	mant := byte((s >> (exp + 3)) & 0x0F)
	return ^(sign | byte(exp)<<4 | mant)
}

func ulawToLinear(u byte) int16 {
	u = ^u
	sign := u & 0x80
	exp := (u >> 4) & 0x07
	mant := u & 0x0F
	value := (int(mant) << 3) + ulawBias
	value <<= uint(exp)
	value -= ulawBias
	if sign != 0 {
		return int16(-value)
	}
	return int16(value)
}

func linearToALaw(sample int16) byte {
	s := int(sample)
	sign := byte(0)
	if s < 0 {
		s = -s - 1
		sign = 0x80
	}
	if s > pcmClip {
		s = pcmClip
	}
	var comp byte
	if s >= 256 {
		exp := 7
		for mask := 0x4000; s&mask == 0 && exp > 0; mask >>= 1 {
			exp--
		}
		mant := byte((s >> (exp + 3)) & 0x0F)
		comp = byte(exp)<<4 | mant
	} else {
		comp = byte(s >> 4)
	}
	comp ^= 0x55
	return comp ^ sign
}

func alawToLinear(a byte) int16 {
	a ^= 0x55
	sign := a & 0x80
	exp := (a >> 4) & 0x07
	mant := a & 0x0F
	var value int
	if exp != 0 {
		value = (int(mant)<<4 + 0x100) << (exp - 1)
	} else {
		value = (int(mant) << 4) + 8
	}
	if sign != 0 {
		return int16(-value)
	}
	return int16(value)
}
