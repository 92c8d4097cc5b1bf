// Package netplay synchronizes a remote combatant between two peers over a
// single TCP connection carrying newline-delimited JSON envelopes.
package netplay

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/combat"
)

// MsgType identifies an envelope payload.
type MsgType string

const (
	// MsgHello carries a peer's name and loadout; each side sends it once.
	MsgHello MsgType = "hello"
	// MsgState carries the sender's local combatant snapshot, once per tick.
	MsgState MsgType = "state"
	// MsgBye announces an orderly close.
	MsgBye MsgType = "bye"
)

// ErrMalformed is returned by Decode for a record that is not an envelope.
var ErrMalformed = errors.New("netplay: malformed record")

// Envelope is the wire record: {"t": type, "p": payload}.
type Envelope struct {
	T MsgType         `json:"t"`
	P json.RawMessage `json:"p,omitempty"`
}

// HelloPayload introduces a peer.
type HelloPayload struct {
	Name   string `json:"name"`
	Weapon string `json:"weapon"`
	Armor  string `json:"armor"`
}

// StatePayload is one snapshot of the sender's local combatant.
type StatePayload struct {
	Seq         uint64        `json:"seq"`
	X           float64       `json:"x"`
	Y           float64       `json:"y"`
	FacingRight bool          `json:"facing"`
	Attack      bool          `json:"attack,omitempty"`
	Aim         *combat.Point `json:"aim,omitempty"`
	Health      int           `json:"health"`
	Alive       bool          `json:"alive"`
}

// Encode marshals payload into a newline-terminated envelope record.
//
// Postcondition: the returned record ends in exactly one '\n' and contains no other.
func Encode(t MsgType, payload any) ([]byte, error) {
	env := Envelope{T: t}
	if payload != nil {
		p, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding %s payload: %w", t, err)
		}
		env.P = p
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding %s envelope: %w", t, err)
	}
	return append(b, '\n'), nil
}

// Decode parses one record (without its trailing newline) into an envelope.
// Unknown envelope fields are ignored.
func Decode(record []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(record, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.T == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return env, nil
}

// DecodePayload unmarshals the payload of env into T. Unknown payload fields
// are ignored.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("%w: %s has no payload", ErrMalformed, env.T)
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, fmt.Errorf("%w: %s payload: %v", ErrMalformed, env.T, err)
	}
	return out, nil
}
