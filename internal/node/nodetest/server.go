package nodetest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
	"ceremony/internal/node"
	"ceremony/internal/wire"
)

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     uint64            `json:"id"`
	Key    string            `json:"key"`
}

type handlerFunc func(params []json.RawMessage) (interface{}, error)

var errMissing = errors.New("flip is missing")

// Handler returns the HTTP handler serving JSON-RPC on POST /.
func (n *Node) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/", n.serveRPC)
	return r
}

func (n *Node) serveRPC(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls[req.Method]++
	var injected *failure
	if f, ok := n.failures[req.Method]; ok && f.times > 0 {
		f.times--
		injected = f
	}
	apiKey := n.APIKey
	n.mu.Unlock()

	if injected != nil && injected.mode == FailNetwork {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	resp := node.Response{ID: req.ID}
	switch {
	case injected != nil:
		resp.Error = &node.RPCError{Message: "injected failure"}
	case apiKey != "" && req.Key != apiKey:
		resp.Error = &node.RPCError{Message: "the provided API key is invalid"}
	default:
		h, ok := n.methods()[req.Method]
		if !ok {
			resp.Error = &node.RPCError{Code: -32601, Message: fmt.Sprintf("the method %s does not exist", req.Method)}
			break
		}
		out, err := h(req.Params)
		if err != nil {
			resp.Error = &node.RPCError{Message: err.Error()}
			break
		}
		raw, err := json.Marshal(out)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.Result = raw
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (n *Node) methods() map[string]handlerFunc {
	return map[string]handlerFunc{
		"flip_shortHashes":                      n.shortHashes,
		"flip_longHashes":                       n.longHashes,
		"flip_get":                              n.getFlip,
		"flip_keys":                             n.flipKeys,
		"flip_words":                            n.flipWords,
		"flip_wordPairs":                        n.wordPairs,
		"flip_wordsSeed":                        n.wordsSeed,
		"flip_privateEncryptionKeyCandidates":   n.candidates,
		"flip_sendPublicEncryptionKey":          n.sendPublicKey,
		"flip_sendPrivateEncryptionKeysPackage": n.sendPrivatePackage,
		"bcn_getRawTx":                          n.getRawTx,
		"bcn_sendRawTx":                         n.sendRawTx,
		"bcn_transaction":                       n.transaction,
		"bcn_syncing":                           n.syncStatus,
		"dna_identity":                          n.identityOf,
		"dna_isValidationReady":                 n.validationReady,
		"dna_epoch":                             n.epochInfo,
		"dna_ceremonyIntervals":                 n.intervals,
	}
}

func param(params []json.RawMessage, i int, out interface{}) error {
	if i >= len(params) {
		return fmt.Errorf("missing param %d", i)
	}
	return json.Unmarshal(params[i], out)
}

func (n *Node) shortHashes([]json.RawMessage) (interface{}, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.FlipHashInfo(nil), n.short...), nil
}

func (n *Node) longHashes([]json.RawMessage) (interface{}, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.FlipHashInfo(nil), n.long...), nil
}

func (n *Node) lookupFlip(params []json.RawMessage) (*storedFlip, error) {
	var hash domain.FlipHash
	if err := param(params, 0, &hash); err != nil {
		return nil, err
	}
	f, ok := n.flips[hash]
	if !ok {
		return nil, errMissing
	}
	return f, nil
}

func (n *Node) getFlip(params []json.RawMessage) (interface{}, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	f, err := n.lookupFlip(params)
	if err != nil {
		return nil, err
	}
	if f.missing {
		return nil, errMissing
	}
	return f.ct, nil
}

func (n *Node) flipKeys(params []json.RawMessage) (interface{}, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	f, err := n.lookupFlip(params)
	if err != nil {
		return nil, err
	}
	return f.keys, nil
}

func (n *Node) flipWords(params []json.RawMessage) (interface{}, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	f, err := n.lookupFlip(params)
	if err != nil {
		return nil, err
	}
	return f.words, nil
}

func (n *Node) wordPairs(params []json.RawMessage) (interface{}, error) {
	var addr domain.Address
	if err := param(params, 0, &addr); err != nil {
		return nil, err
	}
	var vrfHash hexutil.Bytes
	if err := param(params, 1, &vrfHash); err != nil {
		return nil, err
	}
	if len(vrfHash) != 32 {
		return nil, fmt.Errorf("vrf hash is %d bytes", len(vrfHash))
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.FlipWordPair(nil), n.pairs...), nil
}

func (n *Node) wordsSeed([]json.RawMessage) (interface{}, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return hexutil.Bytes(n.seed), nil
}

func (n *Node) candidates([]json.RawMessage) (interface{}, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]hexutil.Bytes, len(n.cands))
	for i, c := range n.cands {
		out[i] = c
	}
	return out, nil
}

func (n *Node) verifyKeyArgs(params []json.RawMessage) (domain.EncryptionKeyArgs, error) {
	var args domain.EncryptionKeyArgs
	if err := param(params, 0, &args); err != nil {
		return args, err
	}
	signer, err := wire.VerifyKeyArgs(args)
	if err != nil {
		return args, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if args.Epoch != n.epoch {
		return args, fmt.Errorf("wrong epoch %d", args.Epoch)
	}
	if n.identity.Address != (domain.Address{}) && signer != n.identity.Address {
		return args, errors.New("signer is not the node identity")
	}
	return args, nil
}

func (n *Node) sendPublicKey(params []json.RawMessage) (interface{}, error) {
	args, err := n.verifyKeyArgs(params)
	if err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pubKeys = append(n.pubKeys, args)
	return nil, nil
}

func (n *Node) sendPrivatePackage(params []json.RawMessage) (interface{}, error) {
	args, err := n.verifyKeyArgs(params)
	if err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.pubKeys) == 0 {
		return nil, errors.New("public key is not published")
	}
	n.privPkgs = append(n.privPkgs, args)
	return nil, nil
}

func (n *Node) getRawTx(params []json.RawMessage) (interface{}, error) {
	var args domain.RawTxArgs
	if err := param(params, 0, &args); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nonce++
	tx := wire.Transaction{Data: wire.TxData{
		Nonce:   n.nonce,
		Epoch:   uint32(n.epoch),
		Type:    uint32(args.Type),
		Amount:  decimalBytes(args.Amount),
		MaxFee:  decimalBytes(args.MaxFee),
		Payload: args.Payload,
	}}
	if args.To != nil {
		tx.Data.To = args.To.Bytes()
	}
	raw, err := tx.Encode()
	if err != nil {
		return nil, err
	}
	return hexutil.Bytes(raw), nil
}

func (n *Node) sendRawTx(params []json.RawMessage) (interface{}, error) {
	var raw hexutil.Bytes
	if err := param(params, 0, &raw); err != nil {
		return nil, err
	}
	tx, err := wire.DecodeTransaction(raw)
	if err != nil {
		return nil, err
	}
	sender, err := tx.Sender()
	if err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}
	hash, err := tx.Hash()
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, dup := n.txs[hash]; dup {
		return hash, nil
	}
	typ := domain.TxType(tx.Data.Type)
	if typ == domain.SubmitShortAnswersTx && !n.minedLocked(sender, domain.SubmitAnswersHashTx) {
		return nil, errors.New("answers hash is not mined")
	}
	n.txs[hash] = &Tx{Hash: hash, Sender: sender, Type: typ, Data: tx.Data}
	n.txOrder = append(n.txOrder, hash)
	return hash, nil
}

func (n *Node) minedLocked(sender domain.Address, t domain.TxType) bool {
	for _, h := range n.txOrder {
		tx := n.txs[h]
		if tx.Sender == sender && tx.Type == t && tx.Mined {
			return true
		}
	}
	return false
}

func (n *Node) transaction(params []json.RawMessage) (interface{}, error) {
	var hash domain.TxHash
	if err := param(params, 0, &hash); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	tx, ok := n.txs[hash]
	if !ok {
		return nil, errors.New("transaction not found")
	}
	tx.Polls++
	if tx.Polls > n.MinedAfter {
		tx.Mined = true
	}
	receipt := domain.TxReceipt{Hash: tx.Hash, Type: tx.Type.String(), Epoch: n.epoch}
	if tx.Mined {
		receipt.BlockHash = crypto.BytesToHex(crypto.Keccak256([]byte(tx.Hash), []byte("block")))
	}
	return receipt, nil
}

func (n *Node) syncStatus([]json.RawMessage) (interface{}, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return domain.SyncStatus{Syncing: n.syncing, CurrentBlock: 100, HighestBlock: 100}, nil
}

func (n *Node) identityOf(params []json.RawMessage) (interface{}, error) {
	var addr domain.Address
	if err := param(params, 0, &addr); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if addr != n.identity.Address {
		return domain.Identity{Address: addr, State: "Undefined"}, nil
	}
	return n.identity, nil
}

func (n *Node) validationReady([]json.RawMessage) (interface{}, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ready, nil
}

func (n *Node) epochInfo([]json.RawMessage) (interface{}, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return domain.EpochInfo{
		Epoch:                  n.epoch,
		NextValidation:         n.timing.ValidationStart.UTC().Format(time.RFC3339),
		CurrentPeriod:          "ShortSession",
		CurrentValidationStart: strconv.FormatInt(n.timing.ValidationStart.Unix(), 10),
	}, nil
}

func (n *Node) intervals([]json.RawMessage) (interface{}, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return domain.CeremonyIntervals{
		FlipLotteryDuration:  (5 * time.Minute).Seconds(),
		ShortSessionDuration: n.timing.ShortSession.Seconds(),
		LongSessionDuration:  n.timing.LongSession.Seconds(),
	}, nil
}
