package planner

// Similarity scores how alike two normalized strings are, on [0,1].
// Implementations must be symmetric, return 1.0 for identical strings and
// 0.0 for strings with no characters in common.
type Similarity interface {
	Ratio(a, b string) float64
}

// SequenceRatio implements the Ratcliff/Obershelp sequence ratio:
// 2*M / (len(a)+len(b)), where M is the total length of matching blocks
// found by recursing around the longest common substring. It works on runes
// so multi-byte characters in product names count as single units.
type SequenceRatio struct{}

// Ratio computes the sequence ratio between a and b.
func (SequenceRatio) Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	matched := matchingRunes(ra, rb)
	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingRunes returns the total number of runes covered by matching blocks.
func matchingRunes(a, b []rune) int {
	aStart, bStart, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingRunes(a[:aStart], b[:bStart])
	total += matchingRunes(a[aStart+size:], b[bStart+size:])
	return total
}

// longestCommonBlock finds the longest common contiguous run of runes.
// Ties resolve to the earliest occurrence in a, then in b, which keeps the
// recursion deterministic.
func longestCommonBlock(a, b []rune) (aStart, bStart, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// lengths[j] is the length of the common suffix ending at a[i], b[j].
	lengths := make([]int, len(b))
	for i := range a {
		prev := 0
		for j := range b {
			cur := lengths[j]
			if a[i] == b[j] {
				lengths[j] = prev + 1
				if lengths[j] > size {
					size = lengths[j]
					aStart = i - size + 1
					bStart = j - size + 1
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return aStart, bStart, size
}
