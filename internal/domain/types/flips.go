package types

// FlipStatus tracks how far a flip got through fetch and decode.
type FlipStatus uint8

const (
	// FlipUnresolved has no ciphertext yet.
	FlipUnresolved FlipStatus = iota
	// FlipFetched holds ciphertext that could not be decoded yet (keys missing).
	FlipFetched
	// FlipDecoded has all four images and both order variants.
	FlipDecoded
	// FlipMissing was reported absent by the node and is being retried.
	FlipMissing
	// FlipFailed is terminal: never decodable in this session.
	FlipFailed
)

var flipStatusNames = [...]string{"unresolved", "fetched", "decoded", "missing", "failed"}

func (s FlipStatus) String() string {
	if int(s) < len(flipStatusNames) {
		return flipStatusNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further fetch work can change the status.
func (s FlipStatus) Terminal() bool { return s == FlipDecoded || s == FlipFailed }

// Answer is the chosen side of a flip.
type Answer uint8

const (
	AnswerNone Answer = iota
	AnswerLeft
	AnswerRight
)

func (a Answer) String() string {
	switch a {
	case AnswerLeft:
		return "left"
	case AnswerRight:
		return "right"
	default:
		return "none"
	}
}

// Grade is the long-session relevance judgement. Reported marks a flip as
// irrelevant to its keywords; Grade1..Grade5 are quality scores.
type Grade uint8

const (
	GradeNone Grade = iota
	GradeReported
	Grade1
	Grade2
	Grade3
	Grade4
	Grade5
)

// Valid reports whether g fits the three-bit grade slot.
func (g Grade) Valid() bool { return g <= Grade5 }

// FlipHashInfo is one entry of the node's short/long hash lists.
type FlipHashInfo struct {
	Hash      FlipHash `json:"hash"`
	Ready     bool     `json:"ready"`
	Extra     bool     `json:"extra"`
	Available bool     `json:"available"`
}

// Flip is the client-side record of a single flip in a session.
type Flip struct {
	Hash   FlipHash   `json:"hash"`
	Status FlipStatus `json:"status"`
	// Extra is set for optional flips that have not been swapped in.
	Extra bool `json:"extra"`

	// Images and Orders are never persisted; they are refetched on resume.
	Images [][]byte `json:"-"`
	Orders [2][]int `json:"-"`

	Keywords *FlipWords `json:"keywords,omitempty"`
	Answer   Answer     `json:"answer"`
	Grade    Grade      `json:"grade"`
	Favorite bool       `json:"favorite,omitempty"`

	Attempts int `json:"attempts,omitempty"`
}

// Solvable reports whether the flip can be answered.
func (f Flip) Solvable() bool { return f.Status == FlipDecoded && !f.Extra }

// Release drops decoded image data.
func (f *Flip) Release() {
	f.Images = nil
	f.Orders = [2][]int{}
}

// FlipUpdate is the result of one fetch attempt for a hash.
type FlipUpdate struct {
	Session  SessionKind
	Hash     FlipHash
	Status   FlipStatus
	Images   [][]byte
	Orders   [2][]int
	// Keywords is only filled for long-session flips.
	Keywords *FlipWords
	Err      error
}
