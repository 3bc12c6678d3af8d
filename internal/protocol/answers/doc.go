// Package answers packs per-flip answers and grades into the bit layout the
// network verifies.
//
// For N hashes in canonical order the layout is a single integer where bit i
// marks "left" for flip i, bit N+i marks "right", and bits 2N+3i..2N+3i+2
// hold the grade code. The integer is written as minimal big-endian bytes.
// The layout is a compatibility contract and must not change.
package answers
