package px

// longestMatch scans the lookback window preceding cur in forward order and
// returns the longest run equal to the bytes at cur. The first occurrence
// wins ties. The source run always ends before cur.
//
// Offset is negative, length is zero when no run of minSeqLen exists.
func longestMatch(src []byte, cur int) (offset, length int) {
	limit := len(src) - cur
	if limit > maxSeqLen {
		limit = maxSeqLen
	}
	if limit < minSeqLen {
		return 0, 0
	}
	start := cur - lookbackSize
	if start < 0 {
		start = 0
	}
	for s := start; s < cur; s++ {
		n := limit
		if cur-s < n {
			n = cur - s
		}
		if n <= length || n < minSeqLen {
			// Window shrinks towards cur, nothing longer is left.
			break
		}
		l := 0
		for l < n && src[s+l] == src[cur+l] {
			l++
		}
		if l > length {
			offset, length = s-cur, l
			if length == limit {
				break
			}
		}
	}
	if length < minSeqLen {
		return 0, 0
	}
	return offset, length
}
