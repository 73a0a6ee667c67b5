package dedup

import "strings"

// Ratio returns the case-insensitive gestalt similarity of a and b in [0, 1]:
// 2*M/T, where M is the number of characters in the matching blocks found by
// recursive longest-common-substring search and T is the total length of both
// strings. It matches difflib.SequenceMatcher(None, a, b).ratio(), including
// the popular-element heuristic for second strings of 200 or more runes.
func Ratio(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	m := newMatcher(ra, rb)
	return 2.0 * float64(m.matches()) / float64(total)
}

type matcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	// Runes that make up more than 1% of a long b are not used as match
	// anchors. They can still extend a match found elsewhere.
	if n := len(b); n >= 200 {
		limit := n/100 + 1
		for r, idx := range b2j {
			if len(idx) > limit {
				delete(b2j, r)
			}
		}
	}

	return &matcher{a: a, b: b, b2j: b2j}
}

type span struct {
	alo, ahi, blo, bhi int
}

// matches sums the sizes of all matching blocks.
func (m *matcher) matches() int {
	total := 0
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := m.longest(s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		total += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return total
}

// longest finds the longest matching block in a[alo:ahi] and b[blo:bhi].
// Ties resolve to the earliest block in a, then the earliest in b.
func (m *matcher) longest(alo, ahi, blo, bhi int) (int, int, int) {
	besti, bestj, bestk := alo, blo, 0

	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}

	for besti > alo && bestj > blo && m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestk = besti-1, bestj-1, bestk+1
	}
	for besti+bestk < ahi && bestj+bestk < bhi && m.a[besti+bestk] == m.b[bestj+bestk] {
		bestk++
	}

	return besti, bestj, bestk
}
