package trivia

import (
	"math"
	"sort"
	"strings"
)

// PartialRatio scores (0-100) how well the shorter string matches its best-aligned window of the longer one.
// Candidate windows are anchored on the matching blocks between the two strings and scored with the
// Indel similarity 2*M/T, where M is the length of their longest common subsequence.
// Comparison is case-insensitive and ignores differences in whitespace.
func PartialRatio(a, b string) int {
	short, long := []rune(normalize(a)), []rune(normalize(b))
	if len(short) == 0 || len(long) == 0 {
		return 0
	}
	if len(short) > len(long) {
		short, long = long, short
	}

	best := 0.0
	for _, m := range matchingBlocks(short, long) {
		start := m.j - m.i
		if start < 0 {
			start = 0
		}
		end := start + len(short)
		if end > len(long) {
			end = len(long)
		}
		r := indelRatio(short, long[start:end])
		if r > 0.995 {
			return 100
		}
		if r > best {
			best = r
		}
	}
	return int(math.Round(100 * best))
}

// match is a common run a[i:i+size] == b[j:j+size].
type match struct {
	i, j, size int
}

// matchingBlocks returns the non-overlapping common runs of a and b in order, found by repeatedly
// taking the longest common substring of the unmatched ranges. A zero-size sentinel at
// (len(a), len(b)) terminates the list.
func matchingBlocks(a, b []rune) []match {
	positions := make(map[rune][]int)
	for j, r := range b {
		positions[r] = append(positions[r], j)
	}

	var blocks []match
	pending := [][4]int{{0, len(a), 0, len(b)}}
	for len(pending) > 0 {
		q := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		alo, ahi, blo, bhi := q[0], q[1], q[2], q[3]

		m := longestMatch(a, positions, alo, ahi, blo, bhi)
		if m.size == 0 {
			continue
		}
		blocks = append(blocks, m)
		if alo < m.i && blo < m.j {
			pending = append(pending, [4]int{alo, m.i, blo, m.j})
		}
		if m.i+m.size < ahi && m.j+m.size < bhi {
			pending = append(pending, [4]int{m.i + m.size, ahi, m.j + m.size, bhi})
		}
	}

	sort.Slice(blocks, func(x, y int) bool {
		if blocks[x].i != blocks[y].i {
			return blocks[x].i < blocks[y].i
		}
		return blocks[x].j < blocks[y].j
	})
	return append(blocks, match{i: len(a), j: len(b)})
}

// longestMatch finds the longest a[i:i+k] == b[j:j+k] inside the given ranges, earliest first on ties.
func longestMatch(a []rune, positions map[rune][]int, alo, ahi, blo, bhi int) match {
	best := match{i: alo, j: blo}
	runLen := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range positions[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := runLen[j-1] + 1
			next[j] = k
			if k > best.size {
				best = match{i: i - k + 1, j: j - k + 1, size: k}
			}
		}
		runLen = next
	}
	return best
}

// indelRatio is 2*LCS(a, b) / (len(a)+len(b)).
func indelRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for _, x := range a {
		for j, y := range b {
			switch {
			case x == y:
				cur[j+1] = prev[j] + 1
			case prev[j+1] >= cur[j]:
				cur[j+1] = prev[j+1]
			default:
				cur[j+1] = cur[j]
			}
		}
		prev, cur = cur, prev
	}
	return 2 * float64(prev[len(b)]) / float64(total)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
