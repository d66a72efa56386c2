package memory

// Similarity returns the Ratcliff/Obershelp ratio between two strings: twice
// the number of matching characters divided by the combined length, in
// [0, 1]. Matching characters are counted over the longest common block and,
// recursively, the pieces to its left and right.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingChars(ra, rb)) / float64(total)
}

func matchingChars(a, b []rune) int {
	i, j, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingChars(a[:i], b[:j]) + matchingChars(a[i+size:], b[j+size:])
}

// longestMatch finds the longest run with a[i:i+size] == b[j:j+size],
// preferring the earliest i, then the earliest j, on equal sizes.
func longestMatch(a, b []rune) (bestI, bestJ, bestSize int) {
	runEnding := make(map[int]int) // b index -> run length ending there
	for i := range a {
		next := make(map[int]int)
		for j := range b {
			if a[i] != b[j] {
				continue
			}
			size := runEnding[j-1] + 1
			next[j] = size
			if size > bestSize {
				bestI, bestJ, bestSize = i-size+1, j-size+1, size
			}
		}
		runEnding = next
	}
	return bestI, bestJ, bestSize
}
