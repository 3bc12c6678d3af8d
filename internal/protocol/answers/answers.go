package answers

import (
	"math/big"

	"golang.org/x/xerrors"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
)

const gradeBits = 3

// ErrBadGrade is returned for grade codes that do not fit three bits.
var ErrBadGrade = xerrors.New("grade out of range")

// Entry is one flip's answer and grade.
type Entry struct {
	Hash   domain.FlipHash
	Answer domain.Answer
	Grade  domain.Grade
}

// Serialize packs entries against the canonical hash order. Hashes without
// an entry contribute zeros; entries for unknown hashes are ignored.
func Serialize(hashes []domain.FlipHash, entries []Entry) ([]byte, error) {
	pos := make(map[domain.FlipHash]int, len(hashes))
	for i, h := range hashes {
		pos[h] = i
	}
	n := len(hashes)
	v := new(big.Int)
	for _, e := range entries {
		i, ok := pos[e.Hash]
		if !ok {
			continue
		}
		switch e.Answer {
		case domain.AnswerLeft:
			v.SetBit(v, i, 1)
		case domain.AnswerRight:
			v.SetBit(v, n+i, 1)
		}
		if !e.Grade.Valid() {
			return nil, xerrors.Errorf("flip %s: %w", e.Hash, ErrBadGrade)
		}
		for b := 0; b < gradeBits; b++ {
			if e.Grade&(1<<b) != 0 {
				v.SetBit(v, 2*n+gradeBits*i+b, 1)
			}
		}
	}
	return crypto.BigToBytes(v), nil
}

// Parse unpacks data against the canonical hash order. A flip with both
// answer bits set is rejected.
func Parse(hashes []domain.FlipHash, data []byte) ([]Entry, error) {
	n := len(hashes)
	v := crypto.BytesToBig(data)
	if v.BitLen() > 5*n {
		return nil, &domain.DecodeError{What: "answers", Err: xerrors.New("too many bits")}
	}
	out := make([]Entry, n)
	for i, h := range hashes {
		e := Entry{Hash: h}
		left, right := v.Bit(i) == 1, v.Bit(n+i) == 1
		switch {
		case left && right:
			return nil, &domain.DecodeError{What: "answers", Err: xerrors.Errorf("flip %s answered twice", h)}
		case left:
			e.Answer = domain.AnswerLeft
		case right:
			e.Answer = domain.AnswerRight
		}
		for b := 0; b < gradeBits; b++ {
			if v.Bit(2*n+gradeBits*i+b) == 1 {
				e.Grade |= 1 << b
			}
		}
		out[i] = e
	}
	return out, nil
}

// FromFlips collects entries from flip records.
func FromFlips(flips []domain.Flip) []Entry {
	out := make([]Entry, 0, len(flips))
	for _, f := range flips {
		if f.Answer == domain.AnswerNone && f.Grade == domain.GradeNone {
			continue
		}
		out = append(out, Entry{Hash: f.Hash, Answer: f.Answer, Grade: f.Grade})
	}
	return out
}

// CommitHash is keccak256(answers || salt), the short-session commit payload.
func CommitHash(answers, salt []byte) []byte {
	return crypto.Keccak256(answers, salt)
}
