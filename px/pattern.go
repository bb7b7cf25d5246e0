package px

// nibbles splits two bytes into four nibbles, high nibble first.
func nibbles(b1, b2 byte) [4]byte {
	return [4]byte{b1 >> 4, b1 & 0xF, b2 >> 4, b2 & 0xF}
}

// findPattern returns the pattern index and the stored low nibble that
// expandPattern turns back into n.
//
// Index 0 is four equal nibbles. Indices 1-4 are three equal nibbles with
// nibble index-1 decremented by one, indices 5-8 the same with nibble
// index-5 incremented. For indices 1 and 5 the decoder adjusts the shared
// base, so the stored nibble is the value of the odd nibble instead.
func findPattern(n [4]byte, nearEqual bool) (idx, low byte, ok bool) {
	if n[0] == n[1] && n[1] == n[2] && n[2] == n[3] {
		return 0, n[0], true
	}
	if !nearEqual {
		return 0, 0, false
	}
	for p := 0; p < 4; p++ {
		c := n[(p+1)%4]
		same := true
		for q := 0; q < 4; q++ {
			if q != p && n[q] != c {
				same = false
				break
			}
		}
		if !same {
			continue
		}
		switch {
		case n[p]+1 == c:
			if p == 0 {
				return 1, n[p], true
			}
			return byte(1 + p), c, true
		case n[p] == c+1:
			if p == 0 {
				return 5, n[p], true
			}
			return byte(5 + p), c, true
		}
		return 0, 0, false
	}
	return 0, 0, false
}

// expandPattern reconstructs the two bytes of pattern idx.
func expandPattern(idx, low byte) (byte, byte) {
	if idx == 0 {
		b := low<<4 | low
		return b, b
	}
	base := low
	switch idx {
	case 1:
		base++
	case 5:
		base--
	}
	n := [4]byte{base, base, base, base}
	if idx <= 4 {
		n[idx-1]--
	} else {
		n[idx-5]++
	}
	return (n[0]&0xF)<<4 | n[1]&0xF, (n[2]&0xF)<<4 | n[3]&0xF
}
