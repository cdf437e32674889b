package deduplication

// sequenceRatio scores two strings with the Ratcliff-Obershelp sequence
// ratio: twice the total length of the matching blocks over the summed
// lengths, in [0,1]. Stored thresholds were calibrated against this
// ratio, so swapping in an edit-distance metric would change which pairs
// clear them.
type sequenceRatio struct{}

func (sequenceRatio) Compare(a, b string) float64 {
	ar := []rune(a)
	br := []rune(b)
	if len(ar)+len(br) == 0 {
		return 1
	}
	return 2 * float64(matchedRunes(ar, br)) / float64(len(ar)+len(br))
}

// matchedRunes finds the longest common block and recurses into the
// unmatched pieces on both sides of it.
func matchedRunes(a, b []rune) int {
	ai, bi, size := longestBlock(a, b)
	if size == 0 {
		return 0
	}
	return size + matchedRunes(a[:ai], b[:bi]) + matchedRunes(a[ai+size:], b[bi+size:])
}

func longestBlock(a, b []rune) (ai, bi, size int) {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			if a[i] != b[j] {
				curr[j+1] = 0
				continue
			}
			curr[j+1] = prev[j] + 1
			if curr[j+1] > size {
				size = curr[j+1]
				ai = i - size + 1
				bi = j - size + 1
			}
		}
		prev, curr = curr, prev
	}

	return ai, bi, size
}
