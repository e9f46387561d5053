// Package apdu is the ISO-7816 command/response transport: build a command
// APDU, exchange it with a connected tag, and split the response into its
// body and status word. It never interprets SW beyond the bare success
// check — attaching human strings to a diagnostic code is apperrors' job.
package apdu

import (
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog"
	skyapdu "github.com/skythen/apdu"

	"github.com/chimpdao/nfcauth/internal/apperrors"
)

// StatusWord is SW1<<8|SW2.
type StatusWord uint16

const (
	SWSuccess StatusWord = 0x9000
	// SWKeyNotAvailable is returned by GET_KEY_INFO when the requested key
	// index has not been generated yet.
	SWKeyNotAvailable StatusWord = 0x6A88
	// SWStorageFull is returned by GENERATE_KEY once the chip's key slots
	// are exhausted.
	SWStorageFull StatusWord = 0x6A84
)

// Success reports whether sw is the single success code 0x9000.
func (sw StatusWord) Success() bool {
	return sw == SWSuccess
}

func (sw StatusWord) String() string {
	return fmt.Sprintf("0x%04X", uint16(sw))
}

// Capdu is the command APDU shape; re-exported so callers never import
// skythen/apdu directly.
type Capdu = skyapdu.Capdu

// Card is the minimal surface a reader session exposes to this layer: send
// one raw command APDU, get back one raw response APDU.
type Card interface {
	Transmit(cmd []byte) ([]byte, error)
}

// Exchange encodes capdu, transmits it over card, and decodes the response
// into its body and status word. log may be nil; a nil logger is treated
// as disabled rather than requiring every caller to build one.
func Exchange(card Card, capdu Capdu, log *zerolog.Logger) ([]byte, StatusWord, error) {
	l := logOrNop(log)

	raw, err := capdu.Bytes()
	if err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.Transport, "encoding command apdu")
	}
	l.Debug().Str("apdu", hex.EncodeToString(raw)).Msg("apdu >>")

	resp, err := card.Transmit(raw)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.Transport, "transmitting command apdu")
	}

	rapdu, err := skyapdu.ParseRapdu(resp)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.Transport, "parsing response apdu")
	}

	sw := StatusWord(uint16(rapdu.SW1)<<8 | uint16(rapdu.SW2))
	l.Debug().Str("data", hex.EncodeToString(rapdu.Data)).Str("sw", sw.String()).Msg("apdu <<")
	return rapdu.Data, sw, nil
}

// logOrNop returns a disabled logger when log is nil, so every call site in
// this package can log unconditionally.
func logOrNop(log *zerolog.Logger) zerolog.Logger {
	if log == nil {
		return zerolog.Nop()
	}
	return *log
}

// SelectAID builds the fixed 13-byte AID-select command APDU shared by
// every chip verb's first transition.
func SelectAID(aid []byte) Capdu {
	return Capdu{Cla: 0x00, Ins: 0xA4, P1: 0x04, Data: aid}
}
