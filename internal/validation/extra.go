package validation

import "ceremony/internal/domain"

// ReplaceExtraFlips swaps visible flips that have not decoded for decoded
// extras, in canonical order on both sides. The extra takes the display
// position of the flip it replaces and the replaced flip is hidden. It
// returns the new display order and the number of swaps, which is
// min(failed, available extras).
func ReplaceExtraFlips(
	hashes, display []domain.FlipHash,
	flips map[domain.FlipHash]*domain.Flip,
) ([]domain.FlipHash, int) {
	var failed []int
	for i, h := range display {
		if flips[h].Status != domain.FlipDecoded {
			failed = append(failed, i)
		}
	}
	var extras []*domain.Flip
	for _, h := range hashes {
		if f := flips[h]; f.Extra && f.Status == domain.FlipDecoded {
			extras = append(extras, f)
		}
	}

	n := len(failed)
	if len(extras) < n {
		n = len(extras)
	}
	out := append([]domain.FlipHash(nil), display...)
	for i := 0; i < n; i++ {
		pos := failed[i]
		hidden := flips[out[pos]]
		hidden.Extra = true
		hidden.Answer = domain.AnswerNone
		hidden.Grade = domain.GradeNone

		extras[i].Extra = false
		out[pos] = extras[i].Hash
	}
	return out, n
}
