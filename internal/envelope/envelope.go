// Package envelope implements the askpass wire protocol: a 4-byte
// big-endian length prefix followed by a UTF-8 payload. The same framing
// carries a prompt in one direction and a reply in the other — the listener
// and the helper both read and write it with the same two functions.
package envelope

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/opencode-ai/ssh-core/internal/util"
)

// Write frames payload as a length-prefixed envelope and writes it to w.
// Returns an error if payload exceeds util.MaxPromptEnvelope bytes.
func Write(w io.Writer, payload string) error {
	if len(payload) > util.MaxPromptEnvelope {
		return fmt.Errorf("envelope payload too large: %d > %d", len(payload), util.MaxPromptEnvelope)
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write envelope header: %w", err)
	}
	if _, err := io.WriteString(w, payload); err != nil {
		return fmt.Errorf("write envelope payload: %w", err)
	}
	return nil
}

// Read reads one length-prefixed envelope from r and returns its payload as
// a string. Returns an error if the declared length exceeds
// util.MaxPromptEnvelope or the payload is not valid UTF-8.
func Read(r io.Reader) (string, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return "", fmt.Errorf("read envelope header: %w", err)
	}
	size := binary.BigEndian.Uint32(hdr[:])
	if size > util.MaxPromptEnvelope {
		return "", fmt.Errorf("envelope payload too large: %d > %d", size, util.MaxPromptEnvelope)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read envelope payload: %w", err)
	}
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("envelope payload is not valid UTF-8")
	}
	return string(buf), nil
}
