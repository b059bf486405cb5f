package types

import (
	"errors"
	"fmt"
)

type (
	// Command is a request to change the state of the mint. Attributes are the
	// CBOR encoded command type specific attributes (see AttributesFor).
	// Caller is trusted, it is the host's job to authenticate it. Command
	// carries no time, it is executed at the time of the engine clock.
	Command struct {
		Type       string   `json:"type"`
		Mint       Identity `json:"mint"`
		Caller     Identity `json:"caller"`
		Attributes RawCBOR  `json:"attributes"`
	}

	// Instruction is the command carried by a multisig proposal.
	Instruction struct {
		Type       string  `json:"type"`
		Attributes RawCBOR `json:"attributes"`
	}

	// Receipt describes successfully executed command.
	Receipt struct {
		Command   string   `json:"command"`
		Mint      Identity `json:"mint"`
		Caller    Identity `json:"caller"`
		Timestamp uint64   `json:"timestamp"`
		Events    []Event  `json:"-"`
	}
)

// NewCommand creates command of given type with CBOR encoded attributes.
func NewCommand(typ string, mint, caller Identity, attr any) (*Command, error) {
	cmd := &Command{Type: typ, Mint: mint, Caller: caller}
	if err := cmd.SetAttributes(attr); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (c *Command) SetAttributes(attr any) error {
	b, err := Encode(attr)
	if err != nil {
		return fmt.Errorf("encoding %s attributes: %w", c.Type, err)
	}
	c.Attributes = b
	return nil
}

// UnmarshalAttributes decodes attributes into v, empty attributes leave v unchanged.
func (c *Command) UnmarshalAttributes(v any) error {
	if len(c.Attributes) == 0 {
		return nil
	}
	return Decode(c.Attributes, v)
}

func (c *Command) IsValid() error {
	if c == nil {
		return errors.New("command is nil")
	}
	if c.Type == "" {
		return errors.New("command type is missing")
	}
	if c.Mint.IsZero() {
		return errors.New("mint is missing")
	}
	if c.Caller.IsZero() {
		return errors.New("caller is missing")
	}
	return nil
}

func NewInstruction(typ string, attr any) (Instruction, error) {
	b, err := Encode(attr)
	if err != nil {
		return Instruction{}, fmt.Errorf("encoding %s attributes: %w", typ, err)
	}
	return Instruction{Type: typ, Attributes: b}, nil
}

// Command returns the instruction as a command of the mint executed by caller.
func (ins Instruction) Command(mint, caller Identity) *Command {
	return &Command{
		Type:       ins.Type,
		Mint:       mint,
		Caller:     caller,
		Attributes: ins.Attributes,
	}
}
