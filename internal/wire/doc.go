// Package wire holds the binary models exchanged with the node: signed
// transactions, their typed attachments and the flip key messages.
//
// Every model is a plain struct encoded with go.dedis.ch/protobuf. Fields are
// numbered in declaration order and non-pointer fields are always written,
// so absent byte fields travel as zero-length values rather than being
// omitted. Do not reorder fields.
package wire
