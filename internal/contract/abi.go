package contract

import (
	"context"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/xdr"

	"github.com/chimpdao/nfcauth/internal/apperrors"
)

const (
	FnMint       = "mint"
	FnClaim      = "claim"
	FnTransfer   = "transfer"
	fnGetNonce   = "get_nonce"
	fnOwnerOf    = "owner_of"
	fnTokenURI   = "token_uri"
	fnBalance    = "balance"
	fnTokenID    = "token_id"
	fnNextToken  = "next_token_id"
	fnPublicKey  = "public_key"
	fnName       = "name"
	fnSymbol     = "symbol"
	fnClawback   = "clawback"
)

// authArgs builds the (message, signature, recovery_id, public_key, nonce)
// tail every write method shares.
func authArgs(message, signature []byte, recoveryID uint32, pubKey65 []byte, nonce uint32) ([]xdr.ScVal, error) {
	msgVal, err := bytesScVal(message, 0)
	if err != nil {
		return nil, err
	}
	sigVal, err := bytesScVal(signature, 64)
	if err != nil {
		return nil, err
	}
	ridVal, err := u32ScVal(recoveryID)
	if err != nil {
		return nil, err
	}
	keyVal, err := bytesScVal(pubKey65, 65)
	if err != nil {
		return nil, err
	}
	nonceVal, err := u32ScVal(nonce)
	if err != nil {
		return nil, err
	}
	return []xdr.ScVal{msgVal, sigVal, ridVal, keyVal, nonceVal}, nil
}

// MintArgs builds the mint(to, message, signature, recovery_id,
// public_key, nonce) argument vector.
func MintArgs(to string, message, signature []byte, recoveryID uint32, pubKey65 []byte, nonce uint32) ([]xdr.ScVal, error) {
	toVal, err := addressScVal(to)
	if err != nil {
		return nil, err
	}
	tail, err := authArgs(message, signature, recoveryID, pubKey65, nonce)
	if err != nil {
		return nil, err
	}
	return append([]xdr.ScVal{toVal}, tail...), nil
}

// ClaimArgs builds the claim(claimant, message, signature, recovery_id,
// public_key, nonce) argument vector.
func ClaimArgs(claimant string, message, signature []byte, recoveryID uint32, pubKey65 []byte, nonce uint32) ([]xdr.ScVal, error) {
	claimantVal, err := addressScVal(claimant)
	if err != nil {
		return nil, err
	}
	tail, err := authArgs(message, signature, recoveryID, pubKey65, nonce)
	if err != nil {
		return nil, err
	}
	return append([]xdr.ScVal{claimantVal}, tail...), nil
}

// TransferArgs builds the transfer(from, to, token_id, message, signature,
// recovery_id, public_key, nonce) argument vector.
func TransferArgs(from, to string, tokenID uint64, message, signature []byte, recoveryID uint32, pubKey65 []byte, nonce uint32) ([]xdr.ScVal, error) {
	fromVal, err := addressScVal(from)
	if err != nil {
		return nil, err
	}
	toVal, err := addressScVal(to)
	if err != nil {
		return nil, err
	}
	tokenVal, err := u64ScVal(tokenID)
	if err != nil {
		return nil, err
	}
	tail, err := authArgs(message, signature, recoveryID, pubKey65, nonce)
	if err != nil {
		return nil, err
	}
	return append([]xdr.ScVal{fromVal, toVal, tokenVal}, tail...), nil
}

// GetNonce reads the contract's stored nonce for a 65-byte chip public
// key. Exposed directly for callers that want the raw value rather than
// internal/nonce's bootstrap-on-error behavior.
func (c *Client) GetNonce(ctx context.Context, pubKey65 []byte) (uint32, error) {
	arg, err := bytesScVal(pubKey65, 65)
	if err != nil {
		return 0, err
	}
	ret, err := c.SimulateOnly(ctx, fnGetNonce, []xdr.ScVal{arg})
	if err != nil {
		return 0, err
	}
	v, ok := decodeU32(ret)
	if !ok {
		return 0, apperrors.New(apperrors.ContractSimulation, "get_nonce returned a non-u32 value")
	}
	return v, nil
}

// OwnerOf resolves a token id to its owning address.
func (c *Client) OwnerOf(ctx context.Context, tokenID uint64) (string, error) {
	arg, err := u64ScVal(tokenID)
	if err != nil {
		return "", err
	}
	ret, err := c.SimulateOnly(ctx, fnOwnerOf, []xdr.ScVal{arg})
	if err != nil {
		return "", err
	}
	return decodeAddress(ret)
}

// TokenURI resolves a token id to its metadata URI.
func (c *Client) TokenURI(ctx context.Context, tokenID uint64) (string, error) {
	arg, err := u64ScVal(tokenID)
	if err != nil {
		return "", err
	}
	ret, err := c.SimulateOnly(ctx, fnTokenURI, []xdr.ScVal{arg})
	if err != nil {
		return "", err
	}
	s, ok := decodeString(ret)
	if !ok {
		return "", apperrors.New(apperrors.ContractSimulation, "token_uri returned a non-string value")
	}
	return s, nil
}

// Balance resolves the number of tokens owner holds.
func (c *Client) Balance(ctx context.Context, owner string) (uint32, error) {
	arg, err := addressScVal(owner)
	if err != nil {
		return 0, err
	}
	ret, err := c.SimulateOnly(ctx, fnBalance, []xdr.ScVal{arg})
	if err != nil {
		return 0, err
	}
	v, ok := decodeU32(ret)
	if !ok {
		return 0, apperrors.New(apperrors.ContractSimulation, "balance returned a non-u32 value")
	}
	return v, nil
}

// TokenIDFor resolves the token id already bound to a chip public key, if
// any.
func (c *Client) TokenIDFor(ctx context.Context, pubKey65 []byte) (uint32, error) {
	arg, err := bytesScVal(pubKey65, 65)
	if err != nil {
		return 0, err
	}
	ret, err := c.SimulateOnly(ctx, fnTokenID, []xdr.ScVal{arg})
	if err != nil {
		return 0, err
	}
	v, ok := decodeU32(ret)
	if !ok {
		return 0, apperrors.New(apperrors.ContractSimulation, "token_id returned a non-u32 value")
	}
	return v, nil
}

// NextTokenID previews the token id the next mint would assign.
func (c *Client) NextTokenID(ctx context.Context) (uint32, error) {
	ret, err := c.SimulateOnly(ctx, fnNextToken, nil)
	if err != nil {
		return 0, err
	}
	v, ok := decodeU32(ret)
	if !ok {
		return 0, apperrors.New(apperrors.ContractSimulation, "next_token_id returned a non-u32 value")
	}
	return v, nil
}

// PublicKeyFor resolves the 65-byte chip public key bound to a token id.
func (c *Client) PublicKeyFor(ctx context.Context, tokenID uint64) ([]byte, error) {
	arg, err := u64ScVal(tokenID)
	if err != nil {
		return nil, err
	}
	ret, err := c.SimulateOnly(ctx, fnPublicKey, []xdr.ScVal{arg})
	if err != nil {
		return nil, err
	}
	b, ok := decodeBytes(ret)
	if !ok {
		return nil, apperrors.New(apperrors.ContractSimulation, "public_key returned a non-bytes value")
	}
	return b, nil
}

// Name returns the collection's name.
func (c *Client) Name(ctx context.Context) (string, error) {
	ret, err := c.SimulateOnly(ctx, fnName, nil)
	if err != nil {
		return "", err
	}
	s, ok := decodeString(ret)
	if !ok {
		return "", apperrors.New(apperrors.ContractSimulation, "name returned a non-string value")
	}
	return s, nil
}

// Symbol returns the collection's symbol.
func (c *Client) Symbol(ctx context.Context) (string, error) {
	ret, err := c.SimulateOnly(ctx, fnSymbol, nil)
	if err != nil {
		return "", err
	}
	s, ok := decodeString(ret)
	if !ok {
		return "", apperrors.New(apperrors.ContractSimulation, "symbol returned a non-string value")
	}
	return s, nil
}

// Clawback is an admin write call outside the chip-authorized pipeline; it
// takes a submitter with clawback privileges on the contract rather than a
// chip-derived authorization.
func (c *Client) Clawback(ctx context.Context, admin *keypair.Full, tokenID uint64) (InvokeResult, error) {
	arg, err := u64ScVal(tokenID)
	if err != nil {
		return InvokeResult{}, err
	}
	return c.Invoke(ctx, admin, fnClawback, []xdr.ScVal{arg})
}
