package nodetest

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
	"time"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
	"ceremony/internal/protocol/flip"
	"ceremony/internal/wire"
)

// FailMode selects how an injected failure is reported.
type FailMode int

const (
	// FailNetwork answers with HTTP 503.
	FailNetwork FailMode = iota
	// FailProtocol answers with a JSON-RPC error object.
	FailProtocol
)

// FlipOptions shapes a generated flip.
type FlipOptions struct {
	Extra bool
	// NotReady hides the flip from the ready set until MarkReady.
	NotReady bool
	// Missing makes flip_get fail until Reveal.
	Missing bool
	// Corrupt serves ciphertext that does not decrypt.
	Corrupt bool
	Words   [2]uint32
	Images  [flip.ImagesPerFlip][]byte
	Orders  [2][]int
}

// Tx is a transaction accepted by bcn_sendRawTx.
type Tx struct {
	Hash   domain.TxHash
	Sender domain.Address
	Type   domain.TxType
	Data   wire.TxData
	Polls  int
	Mined  bool
}

type storedFlip struct {
	ct      domain.FlipCiphertext
	keys    domain.FlipKeyPair
	words   domain.FlipWords
	missing bool
}

type failure struct {
	mode  FailMode
	times int
}

// Node is an in-memory ceremony node.
type Node struct {
	mu sync.Mutex

	// APIKey, when set, must accompany every request.
	APIKey string
	// MinedAfter is the number of bcn_transaction polls that report a
	// transaction as pending before it is mined.
	MinedAfter int

	epoch    domain.Epoch
	timing   domain.Timing
	identity domain.Identity
	syncing  bool
	ready    bool
	seed     []byte
	pairs    []domain.FlipWordPair
	short    []domain.FlipHashInfo
	long     []domain.FlipHashInfo
	flips    map[domain.FlipHash]*storedFlip
	counter  int
	cands    [][]byte
	pubKeys  []domain.EncryptionKeyArgs
	privPkgs []domain.EncryptionKeyArgs
	nonce    uint32
	txs      map[domain.TxHash]*Tx
	txOrder  []domain.TxHash
	failures map[string]*failure
	calls    map[string]int
}

// New returns an empty node at epoch.
func New(epoch domain.Epoch) *Node {
	seed := make([]byte, 32)
	_, _ = rand.Read(seed)
	return &Node{
		epoch:    epoch,
		ready:    true,
		seed:     seed,
		flips:    make(map[domain.FlipHash]*storedFlip),
		txs:      make(map[domain.TxHash]*Tx),
		failures: make(map[string]*failure),
		calls:    make(map[string]int),
		timing: domain.Timing{
			ValidationStart: time.Now(),
			ShortSession:    2 * time.Minute,
			LongSession:     30 * time.Minute,
		},
	}
}

// SetIdentity replaces the identity served by dna_identity.
func (n *Node) SetIdentity(id domain.Identity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.identity = id
}

// SetTiming replaces the ceremony schedule served by dna_epoch and
// dna_ceremonyIntervals.
func (n *Node) SetTiming(t domain.Timing) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.timing = t
}

// SetSyncing toggles bcn_syncing.
func (n *Node) SetSyncing(syncing bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.syncing = syncing
}

// SetValidationReady toggles dna_isValidationReady.
func (n *Node) SetValidationReady(ready bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ready = ready
}

// SetCandidates replaces the key package recipients.
func (n *Node) SetCandidates(keys ...*ecdsa.PublicKey) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cands = n.cands[:0]
	for _, k := range keys {
		n.cands = append(n.cands, crypto.PublicKeyBytes(k))
	}
}

// SetWordPairs replaces the pairs served by flip_wordPairs.
func (n *Node) SetWordPairs(pairs []domain.FlipWordPair) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pairs = append([]domain.FlipWordPair(nil), pairs...)
}

// Seed returns the words seed served by flip_wordsSeed.
func (n *Node) Seed() []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]byte(nil), n.seed...)
}

// AddFlip generates, seals and registers a flip for session kind.
func (n *Node) AddFlip(kind domain.SessionKind, opts FlipOptions) (domain.FlipHash, error) {
	pub, err := crypto.GenerateKey()
	if err != nil {
		return "", err
	}
	priv, err := crypto.GenerateKey()
	if err != nil {
		return "", err
	}

	n.mu.Lock()
	n.counter++
	id := n.counter
	n.mu.Unlock()

	images := opts.Images
	for i := range images {
		if images[i] == nil {
			images[i] = []byte(fmt.Sprintf("flip-%d-image-%d", id, i))
		}
	}
	orders := opts.Orders
	if orders[0] == nil {
		orders = [2][]int{{0, 1, 2, 3}, {3, 2, 1, 0}}
	}
	ct, err := flip.Seal(images, orders, &pub.PublicKey, &priv.PublicKey)
	if err != nil {
		return "", err
	}
	if opts.Corrupt {
		ct.PrivateHex = crypto.BytesToHex([]byte("corrupt"))
	}

	sum := crypto.Keccak256([]byte(ct.PublicHex), []byte(ct.PrivateHex))
	hash := domain.FlipHash("bafk" + hex.EncodeToString(sum[:16]))

	info := domain.FlipHashInfo{Hash: hash, Ready: !opts.NotReady, Extra: opts.Extra, Available: true}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.flips[hash] = &storedFlip{
		ct: ct,
		keys: domain.FlipKeyPair{
			PublicKey:  crypto.BytesToHex(crypto.PrivateKeyBytes(pub)),
			PrivateKey: crypto.BytesToHex(crypto.PrivateKeyBytes(priv)),
		},
		words:   domain.FlipWords{Words: opts.Words},
		missing: opts.Missing,
	}
	if kind == domain.LongSession {
		n.long = append(n.long, info)
	} else {
		n.short = append(n.short, info)
	}
	return hash, nil
}

// MarkReady flags hash as ready in whichever list holds it.
func (n *Node) MarkReady(hash domain.FlipHash) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, list := range [][]domain.FlipHashInfo{n.short, n.long} {
		for i := range list {
			if list[i].Hash == hash {
				list[i].Ready = true
			}
		}
	}
}

// Reveal makes a missing flip servable.
func (n *Node) Reveal(hash domain.FlipHash) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if f, ok := n.flips[hash]; ok {
		f.missing = false
	}
}

// FailNext makes the next times calls of method fail with mode.
func (n *Node) FailNext(method string, mode FailMode, times int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures[method] = &failure{mode: mode, times: times}
}

// Calls returns how many requests for method reached the node.
func (n *Node) Calls(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

// Transactions returns accepted transactions in arrival order.
func (n *Node) Transactions() []Tx {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Tx, 0, len(n.txOrder))
	for _, h := range n.txOrder {
		out = append(out, *n.txs[h])
	}
	return out
}

// TransactionsOfType filters Transactions by type.
func (n *Node) TransactionsOfType(t domain.TxType) []Tx {
	var out []Tx
	for _, tx := range n.Transactions() {
		if tx.Type == t {
			out = append(out, tx)
		}
	}
	return out
}

// PublicKeys returns the accepted public flip key messages.
func (n *Node) PublicKeys() []domain.EncryptionKeyArgs {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.EncryptionKeyArgs(nil), n.pubKeys...)
}

// PrivatePackages returns the accepted private key packages.
func (n *Node) PrivatePackages() []domain.EncryptionKeyArgs {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.EncryptionKeyArgs(nil), n.privPkgs...)
}

func decimalBytes(s string) []byte {
	if s == "" {
		return nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil
	}
	return crypto.BigToBytes(v)
}
