// Package contract builds, simulates, assembles, signs, submits, and polls
// Soroban invocations against the NFT contract, and exposes the read-only
// simulate-only path used by internal/nonce and by out-of-scope metadata
// lookups (owner/URI).
package contract

import (
	"context"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	rpcclient "github.com/stellar/stellar-rpc/client"
	"github.com/stellar/stellar-rpc/protocol"

	"github.com/chimpdao/nfcauth/internal/apperrors"
)

// Config is the enumerated configuration surface for everything this
// package touches: network, endpoints, and the invoked contract.
type Config struct {
	Network           string // testnet | mainnet | futurenet
	NetworkPassphrase string
	HorizonURL        string
	RPCURL            string
	ContractID        string // C... StrKey
}

// PollPolicy controls C11's terminal-status wait after submit.
type PollPolicy struct {
	Interval time.Duration
	Attempts int
}

// DefaultPollPolicy matches the spec's fixed-delay, bounded-attempt policy.
var DefaultPollPolicy = PollPolicy{Interval: time.Second, Attempts: 10}

// Client invokes the NFT contract over Soroban RPC, signing writes with a
// submitter keypair supplied per call (never cached at package scope).
type Client struct {
	cfg           Config
	rpc           *rpcclient.Client
	horizon       *horizonclient.Client
	poll          PollPolicy
	contractIDHex string
	log           *zerolog.Logger
}

// New constructs a Client for the given configuration. An empty
// cfg.NetworkPassphrase is resolved from cfg.Network's well-known value.
// log may be nil to disable RPC-level Debug logging.
func New(cfg Config, poll PollPolicy, log *zerolog.Logger) (*Client, error) {
	cfg.NetworkPassphrase = networkPassphraseFor(cfg.Network, cfg.NetworkPassphrase)

	raw, err := strkey.Decode(strkey.VersionByteContract, cfg.ContractID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Validation, "decoding contract id")
	}

	return &Client{
		cfg:           cfg,
		rpc:           rpcclient.NewClient(cfg.RPCURL, nil),
		horizon:       &horizonclient.Client{HorizonURL: cfg.HorizonURL},
		poll:          poll,
		contractIDHex: hex.EncodeToString(raw),
		log:           log,
	}, nil
}

// WithLogger returns a shallow copy of the client using log instead of its
// current logger, letting the orchestrator attach a per-operation
// correlation id to the RPC calls one pipeline run makes without mutating
// the shared, long-lived Client.
func (c *Client) WithLogger(log *zerolog.Logger) *Client {
	clone := *c
	clone.log = log
	return &clone
}

// logOrNop returns a disabled logger when log is nil.
func logOrNop(log *zerolog.Logger) zerolog.Logger {
	if log == nil {
		return zerolog.Nop()
	}
	return *log
}

// InvokeResult is what a terminal, successful write invocation returns:
// the raw return value plus the ledger it was applied in, for callers that
// want to surface e.g. a freshly minted token id.
type InvokeResult struct {
	ReturnValue xdr.ScVal
	Ledger      int64
}

// Invoke runs the full write pipeline: build -> simulate -> assemble ->
// sign with submitter -> submit -> poll for SUCCESS/FAILED.
func (c *Client) Invoke(ctx context.Context, submitter *keypair.Full, fn string, args []xdr.ScVal) (InvokeResult, error) {
	sourceAccount, err := c.loadAccount(ctx, submitter.Address())
	if err != nil {
		return InvokeResult{}, err
	}

	tx, err := c.buildInvocation(sourceAccount, fn, args)
	if err != nil {
		return InvokeResult{}, err
	}

	simResp, err := c.simulate(ctx, tx)
	if err != nil {
		return InvokeResult{}, err
	}
	if simResp.Error != "" {
		return InvokeResult{}, apperrors.New(apperrors.ContractSimulation, simResp.Error)
	}

	assembled, err := assembleWithFootprint(tx, simResp.TransactionData, simResp.MinResourceFee)
	if err != nil {
		return InvokeResult{}, apperrors.Wrap(err, apperrors.ContractSimulation, "assembling transaction with simulation footprint")
	}

	signed, err := assembled.Sign(c.cfg.NetworkPassphrase, submitter)
	if err != nil {
		return InvokeResult{}, apperrors.Wrap(err, apperrors.ContractExecution, "signing transaction")
	}

	envelopeXDR, err := signed.Base64()
	if err != nil {
		return InvokeResult{}, apperrors.Wrap(err, apperrors.ContractExecution, "encoding signed transaction")
	}

	sendResp, err := c.rpc.SendTransaction(ctx, protocol.SendTransactionRequest{Transaction: envelopeXDR})
	if err != nil {
		return InvokeResult{}, apperrors.Wrap(err, apperrors.ContractExecution, "submitting transaction")
	}
	if sendResp.ErrorResultXDR != "" {
		return InvokeResult{}, apperrors.New(apperrors.ContractExecution, sendResp.ErrorResultXDR)
	}
	logOrNop(c.log).Debug().Str("fn", fn).Str("hash", sendResp.Hash).Msg("submitted transaction")

	return c.pollForResult(ctx, sendResp.Hash)
}

func (c *Client) pollForResult(ctx context.Context, hash string) (InvokeResult, error) {
	for attempt := 0; attempt < c.poll.Attempts; attempt++ {
		select {
		case <-ctx.Done():
			return InvokeResult{}, apperrors.Wrap(ctx.Err(), apperrors.Timeout, "poll cancelled")
		case <-time.After(c.poll.Interval):
		}

		resp, err := c.rpc.GetTransaction(ctx, protocol.GetTransactionRequest{Hash: hash})
		if err != nil {
			return InvokeResult{}, apperrors.Wrap(err, apperrors.ContractExecution, "polling transaction status")
		}

		logOrNop(c.log).Debug().Str("hash", hash).Int("attempt", attempt).Str("status", string(resp.Status)).Msg("polled transaction status")

		switch resp.Status {
		case protocol.TransactionStatusSuccess:
			var ret xdr.ScVal
			if resp.ReturnValue != nil {
				ret = *resp.ReturnValue
			}
			return InvokeResult{ReturnValue: ret, Ledger: resp.Ledger}, nil
		case protocol.TransactionStatusFailed:
			return InvokeResult{}, contractExecutionError(resp)
		default:
			// transient status (e.g. NOT_FOUND / PENDING): retry within budget.
		}
	}

	return InvokeResult{}, apperrors.New(apperrors.Timeout, "poll exhausted attempt budget without a terminal status")
}

// SimulateOnly runs build -> simulate and decodes the preview return value,
// skipping assemble/sign/submit. Used by nonce lookups and out-of-scope
// metadata reads that only need a preview value, not a committed write.
func (c *Client) SimulateOnly(ctx context.Context, fn string, args []xdr.ScVal) (xdr.ScVal, error) {
	// A read-only preflight needs a syntactically valid source account for
	// the envelope but never submits, so an unfunded throwaway keypair with
	// sequence 0 is enough — no horizon round trip required.
	placeholder, err := keypair.Random()
	if err != nil {
		return xdr.ScVal{}, apperrors.Wrap(err, apperrors.ContractSimulation, "generating throwaway simulate account")
	}
	sourceAccount := &txnbuild.SimpleAccount{AccountID: placeholder.Address(), Sequence: 0}

	tx, err := c.buildInvocation(sourceAccount, fn, args)
	if err != nil {
		return xdr.ScVal{}, err
	}

	simResp, err := c.simulate(ctx, tx)
	if err != nil {
		return xdr.ScVal{}, err
	}
	if simResp.Error != "" {
		return xdr.ScVal{}, apperrors.New(apperrors.ContractSimulation, simResp.Error)
	}
	if len(simResp.Results) == 0 {
		return xdr.ScVal{}, apperrors.New(apperrors.ContractSimulation, "simulation returned no results")
	}

	var ret xdr.ScVal
	if err := xdr.SafeUnmarshalBase64(simResp.Results[0].XDR, &ret); err != nil {
		return xdr.ScVal{}, apperrors.Wrap(err, apperrors.ContractSimulation, "decoding simulated return value")
	}
	return ret, nil
}

func (c *Client) loadAccount(ctx context.Context, address string) (txnbuild.Account, error) {
	acc, err := c.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Transport, "loading source account")
	}
	return &acc, nil
}

func (c *Client) buildInvocation(source txnbuild.Account, fn string, args []xdr.ScVal) (*txnbuild.Transaction, error) {
	op, err := invokeOp(c.cfg.ContractID, fn, args)
	if err != nil {
		return nil, err
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        source,
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{op},
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(300)},
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ContractSimulation, "building invocation transaction")
	}
	return tx, nil
}

func (c *Client) simulate(ctx context.Context, tx *txnbuild.Transaction) (protocol.SimulateTransactionResponse, error) {
	envelopeXDR, err := tx.Base64()
	if err != nil {
		return protocol.SimulateTransactionResponse{}, apperrors.Wrap(err, apperrors.ContractSimulation, "encoding transaction for simulation")
	}
	resp, err := c.rpc.SimulateTransaction(ctx, protocol.SimulateTransactionRequest{Transaction: envelopeXDR})
	if err != nil {
		return protocol.SimulateTransactionResponse{}, apperrors.Wrap(err, apperrors.Transport, "calling simulateTransaction")
	}
	logOrNop(c.log).Debug().Str("min_resource_fee", strconv.FormatInt(resp.MinResourceFee, 10)).Msg("simulated transaction")
	return resp, nil
}

func contractExecutionError(resp protocol.GetTransactionResponse) *apperrors.Error {
	kind := apperrors.ContractExecution
	code, hasCode := extractContractErrorCode(resp)
	if hasCode {
		if specific, ok := kindForContractCode(code); ok {
			kind = specific
		}
	}

	err := apperrors.New(kind, resp.ResultXDR)
	if hasCode {
		err = err.WithContractCode(code)
	}
	return err
}

// NetworkPassphrase returns the resolved passphrase this client signs and
// simulates against, for callers (the orchestrator's SEP-53 builder) that
// must hash the same passphrase the contract verifies against.
func (c *Client) NetworkPassphrase() string {
	return c.cfg.NetworkPassphrase
}

// ContractIDHex returns the invoked contract's id as a plain hex string,
// decoding the configured C... StrKey once. SEP-53 messages carry the
// contract id as raw hex, not as a StrKey.
func (c *Client) ContractIDHex() string {
	return c.contractIDHex
}

// networkPassphraseFor returns override when it is non-empty; otherwise it
// resolves the well-known passphrase for a named network (mainnet, testnet,
// futurenet), or "" for any other name.
func networkPassphraseFor(name, override string) string {
	if override != "" {
		return override
	}
	switch name {
	case "mainnet":
		return network.PublicNetworkPassphrase
	case "testnet":
		return network.TestNetworkPassphrase
	case "futurenet":
		return network.FutureNetworkPassphrase
	default:
		return override
	}
}
