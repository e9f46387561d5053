// Package chip drives the on-chip command state machine: SELECT_APP,
// GET_KEY_INFO (looping through GENERATE_KEY when the requested key index
// doesn't exist yet), and GENERATE_SIGNATURE. It owns the fixed-offset
// binary response layouts; everything downstream works with parsed
// AuthRecord/SignResult values, never raw APDU bytes.
package chip

import (
	"context"
	"encoding/hex"

	"github.com/rs/zerolog"

	"github.com/chimpdao/nfcauth/internal/apdu"
	"github.com/chimpdao/nfcauth/internal/apperrors"
	"github.com/chimpdao/nfcauth/internal/derenc"
)

// Opcodes and the application AID are chip-model specific; these are the
// values this deployment's chips answer to.
const (
	insGetKeyInfo         = 0x02
	insGenerateKey        = 0x03
	insGenerateSignature  = 0x04
	maxGenerateKeyRetries = 16
)

// DefaultAID is the 13-byte application identifier selected before every
// chip verb.
var DefaultAID = []byte{0xF0, 'N', 'F', 'C', 'N', 'F', 'T', 'v', '1', '.', '0', '.', '0'}

// AuthRecord is the chip's key-info response: a 65-byte uncompressed public
// key plus its two monotone counters.
type AuthRecord struct {
	PublicKey     [65]byte
	GlobalCounter uint32
	KeyCounter    uint32
}

// SignResult is the chip's signature response, DER-decoded into raw (r,s).
// Neither is low-S normalized yet — that happens in the orchestrator via
// internal/curve, after the handler hands the raw signature back.
type SignResult struct {
	GlobalCounter uint32
	KeyCounter    uint32
	R, S          [32]byte
}

// Handler drives one chip's command set over a single APDU-capable card.
type Handler struct {
	card     apdu.Card
	aid      []byte
	keyIndex byte
	log      *zerolog.Logger
}

// New constructs a Handler for a given key index. keyIndex selects which of
// the chip's key slots to read/sign with. log may be nil to disable
// wire-level Debug logging.
func New(card apdu.Card, keyIndex byte, log *zerolog.Logger) *Handler {
	return &Handler{card: card, aid: DefaultAID, keyIndex: keyIndex, log: log}
}

func (h *Handler) selectApp(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(err, apperrors.Transport, "cancelled before select_app")
	}
	_, sw, err := apdu.Exchange(h.card, apdu.SelectAID(h.aid), h.log)
	if err != nil {
		return err
	}
	if !sw.Success() {
		return apperrors.New(apperrors.ChipProtocol, "select_app failed, sw="+sw.String())
	}
	return nil
}

// ReadPublicKey drives SELECT_APP -> GET_KEY_INFO, generating keys on
// "no such key" until the requested index exists or the chip reports its
// storage is full.
func (h *Handler) ReadPublicKey(ctx context.Context) (AuthRecord, error) {
	if err := h.selectApp(ctx); err != nil {
		return AuthRecord{}, err
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return AuthRecord{}, apperrors.Wrap(err, apperrors.Transport, "cancelled during get_key_info")
		}

		body, sw, err := apdu.Exchange(h.card, getKeyInfoCapdu(h.keyIndex), h.log)
		if err != nil {
			return AuthRecord{}, err
		}

		switch {
		case sw.Success():
			rec, err := parseAuthRecord(body)
			if err == nil {
				logOrNop(h.log).Debug().
					Uint32("global_counter", rec.GlobalCounter).
					Uint32("key_counter", rec.KeyCounter).
					Str("public_key", hex.EncodeToString(rec.PublicKey[:])).
					Msg("read chip public key")
			}
			return rec, err
		case sw == apdu.SWKeyNotAvailable:
			if attempt >= maxGenerateKeyRetries {
				return AuthRecord{}, apperrors.New(apperrors.ChipProtocol, "key index not reachable after generating keys")
			}
			if err := h.generateKey(ctx); err != nil {
				return AuthRecord{}, err
			}
		case sw == apdu.SWStorageFull:
			return AuthRecord{}, apperrors.New(apperrors.ChipProtocol, "chip key storage full")
		default:
			return AuthRecord{}, apperrors.New(apperrors.ChipProtocol, "get_key_info failed, sw="+sw.String())
		}
	}
}

func (h *Handler) generateKey(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(err, apperrors.Transport, "cancelled during generate_key")
	}
	_, sw, err := apdu.Exchange(h.card, apdu.Capdu{Cla: 0x00, Ins: insGenerateKey}, h.log)
	if err != nil {
		return err
	}
	if sw == apdu.SWStorageFull {
		return apperrors.New(apperrors.ChipProtocol, "chip key storage full")
	}
	if !sw.Success() {
		return apperrors.New(apperrors.ChipProtocol, "generate_key failed, sw="+sw.String())
	}
	return nil
}

// Sign drives SELECT_APP -> GENERATE_SIGNATURE(msgHash). msgHash must be
// exactly 32 bytes; anything else is a fatal invariant violation, not a
// transport error.
func (h *Handler) Sign(ctx context.Context, msgHash []byte) (SignResult, error) {
	if len(msgHash) != 32 {
		return SignResult{}, apperrors.New(apperrors.Validation, "msg_hash must be exactly 32 bytes")
	}
	if err := h.selectApp(ctx); err != nil {
		return SignResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return SignResult{}, apperrors.Wrap(err, apperrors.Transport, "cancelled before generate_signature")
	}

	capdu := apdu.Capdu{Cla: 0x00, Ins: insGenerateSignature, P1: h.keyIndex, Data: msgHash}
	body, sw, err := apdu.Exchange(h.card, capdu, h.log)
	if err != nil {
		return SignResult{}, err
	}
	if !sw.Success() {
		return SignResult{}, apperrors.New(apperrors.ChipProtocol, "generate_signature failed, sw="+sw.String())
	}

	res, err := parseSignResult(body)
	if err == nil {
		logOrNop(h.log).Debug().
			Uint32("global_counter", res.GlobalCounter).
			Uint32("key_counter", res.KeyCounter).
			Msg("chip signature produced")
	}
	return res, err
}

// logOrNop returns a disabled logger when log is nil.
func logOrNop(log *zerolog.Logger) zerolog.Logger {
	if log == nil {
		return zerolog.Nop()
	}
	return *log
}

func getKeyInfoCapdu(keyIndex byte) apdu.Capdu {
	return apdu.Capdu{Cla: 0x00, Ins: insGetKeyInfo, P1: keyIndex}
}

// parseAuthRecord decodes global_counter(4) || key_counter(4) || 0x04 ||
// X(32) || Y(32), accepting a variant that omits the 0x04 prefix (65 vs 64
// trailing bytes) and normalizing it back in.
func parseAuthRecord(body []byte) (AuthRecord, error) {
	if len(body) < 8 {
		return AuthRecord{}, apperrors.New(apperrors.ChipProtocol, "get_key_info response shorter than counters")
	}
	rec := AuthRecord{
		GlobalCounter: be32(body[0:4]),
		KeyCounter:    be32(body[4:8]),
	}

	key := body[8:]
	switch len(key) {
	case 65:
		if key[0] != 0x04 {
			return AuthRecord{}, apperrors.New(apperrors.ChipProtocol, "public key record has wrong prefix byte")
		}
		copy(rec.PublicKey[:], key)
	case 64:
		rec.PublicKey[0] = 0x04
		copy(rec.PublicKey[1:], key)
	default:
		return AuthRecord{}, apperrors.New(apperrors.ChipProtocol, "public key record is the wrong length")
	}

	return rec, nil
}

// parseSignResult decodes global_counter(4) || key_counter(4) || DER_sig.
func parseSignResult(body []byte) (SignResult, error) {
	if len(body) < 8 {
		return SignResult{}, apperrors.New(apperrors.ChipProtocol, "generate_signature response shorter than counters")
	}

	res := SignResult{
		GlobalCounter: be32(body[0:4]),
		KeyCounter:    be32(body[4:8]),
	}

	r, s, err := derenc.Parse(body[8:])
	if err != nil {
		return SignResult{}, apperrors.Wrap(err, apperrors.Der, "parsing chip signature")
	}
	copy(res.R[:], r)
	copy(res.S[:], s)
	return res, nil
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
