package node

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"ceremony/internal/domain"
)

// ShortHashes returns the short-session flip hashes in canonical order.
func (c *Client) ShortHashes(ctx context.Context) ([]domain.FlipHashInfo, error) {
	var out []domain.FlipHashInfo
	err := c.Call(ctx, "flip_shortHashes", &out)
	return out, err
}

// LongHashes returns the long-session flip hashes in canonical order.
func (c *Client) LongHashes(ctx context.Context) ([]domain.FlipHashInfo, error) {
	var out []domain.FlipHashInfo
	err := c.Call(ctx, "flip_longHashes", &out)
	return out, err
}

// GetFlip returns the encrypted flip body.
func (c *Client) GetFlip(ctx context.Context, hash domain.FlipHash) (domain.FlipCiphertext, error) {
	var out domain.FlipCiphertext
	err := c.Call(ctx, "flip_get", &out, hash)
	return out, err
}

// FlipKeys returns the author's flip key pair for hash.
func (c *Client) FlipKeys(ctx context.Context, hash domain.FlipHash) (domain.FlipKeyPair, error) {
	var out domain.FlipKeyPair
	err := c.Call(ctx, "flip_keys", &out, hash)
	return out, err
}

// Words returns the keyword indices of a flip.
func (c *Client) Words(ctx context.Context, hash domain.FlipHash) (domain.FlipWords, error) {
	var out domain.FlipWords
	err := c.Call(ctx, "flip_words", &out, hash)
	return out, err
}

// WordPairs returns the keyword pairs assigned to addr.
func (c *Client) WordPairs(ctx context.Context, addr domain.Address, vrfHash []byte) ([]domain.FlipWordPair, error) {
	var out []domain.FlipWordPair
	err := c.Call(ctx, "flip_wordPairs", &out, addr, hexutil.Bytes(vrfHash))
	return out, err
}

// WordsSeed returns the epoch seed the reveal VRF is evaluated over.
func (c *Client) WordsSeed(ctx context.Context) ([]byte, error) {
	var out hexutil.Bytes
	err := c.Call(ctx, "flip_wordsSeed", &out)
	return out, err
}

// PrivateEncryptionKeyCandidates returns the uncompressed public keys of the
// participants that should receive the private flip key.
func (c *Client) PrivateEncryptionKeyCandidates(ctx context.Context) ([][]byte, error) {
	var raw []hexutil.Bytes
	if err := c.Call(ctx, "flip_privateEncryptionKeyCandidates", &raw); err != nil {
		return nil, err
	}
	out := make([][]byte, len(raw))
	for i, k := range raw {
		out[i] = k
	}
	return out, nil
}

// SendPublicEncryptionKey publishes the signed public flip key.
func (c *Client) SendPublicEncryptionKey(ctx context.Context, args domain.EncryptionKeyArgs) error {
	return c.Call(ctx, "flip_sendPublicEncryptionKey", nil, args)
}

// SendPrivateEncryptionKeysPackage publishes the signed private key package.
func (c *Client) SendPrivateEncryptionKeysPackage(ctx context.Context, args domain.EncryptionKeyArgs) error {
	return c.Call(ctx, "flip_sendPrivateEncryptionKeysPackage", nil, args)
}

// GetRawTx asks the node to fill nonce, epoch and fee for a transaction.
func (c *Client) GetRawTx(ctx context.Context, args domain.RawTxArgs) ([]byte, error) {
	var out hexutil.Bytes
	err := c.Call(ctx, "bcn_getRawTx", &out, args)
	return out, err
}

// SendRawTx broadcasts a signed transaction.
func (c *Client) SendRawTx(ctx context.Context, raw []byte) (domain.TxHash, error) {
	var out domain.TxHash
	err := c.Call(ctx, "bcn_sendRawTx", &out, hexutil.Bytes(raw))
	return out, err
}

// Transaction looks up a broadcast transaction.
func (c *Client) Transaction(ctx context.Context, hash domain.TxHash) (domain.TxReceipt, error) {
	var out domain.TxReceipt
	err := c.Call(ctx, "bcn_transaction", &out, hash)
	return out, err
}

// Syncing reports the node's sync progress.
func (c *Client) Syncing(ctx context.Context) (domain.SyncStatus, error) {
	var out domain.SyncStatus
	err := c.Call(ctx, "bcn_syncing", &out)
	return out, err
}

// Identity returns the identity record for addr.
func (c *Client) Identity(ctx context.Context, addr domain.Address) (domain.Identity, error) {
	var out domain.Identity
	err := c.Call(ctx, "dna_identity", &out, addr)
	return out, err
}

// IsValidationReady reports whether the node has what it needs to validate.
func (c *Client) IsValidationReady(ctx context.Context) (bool, error) {
	var out bool
	err := c.Call(ctx, "dna_isValidationReady", &out)
	return out, err
}

// Epoch returns the current epoch and next validation time.
func (c *Client) Epoch(ctx context.Context) (domain.EpochInfo, error) {
	var out domain.EpochInfo
	err := c.Call(ctx, "dna_epoch", &out)
	return out, err
}

// CeremonyIntervals returns the ceremony phase durations.
func (c *Client) CeremonyIntervals(ctx context.Context) (domain.CeremonyIntervals, error) {
	var out domain.CeremonyIntervals
	err := c.Call(ctx, "dna_ceremonyIntervals", &out)
	return out, err
}

var _ domain.NodeClient = (*Client)(nil)
