package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sss-org/sss-engine/types"
)

type (
	/*
	CommandRequest is the JSON form of a command. Attributes are given as JSON
	object of the command type specific attributes, ie for "mint"

		{"recipient": "<base58 identity>", "amount": 1000}

	Instruction of the "create_proposal" command is given the same way, as
	{"type": ..., "attributes": {...}} object.
	*/
	CommandRequest struct {
		Type       string          `json:"type"`
		Mint       types.Identity  `json:"mint"`
		Caller     types.Identity  `json:"caller"`
		Attributes json.RawMessage `json:"attributes,omitempty"`
	}

	InstructionRequest struct {
		Type       string          `json:"type"`
		Attributes json.RawMessage `json:"attributes,omitempty"`
	}

	createProposalRequest struct {
		Instruction      InstructionRequest `json:"instruction"`
		ExpiresInSeconds uint64             `json:"expires_in_seconds"`
	}

	// CommandResponse is the receipt of the executed command.
	CommandResponse struct {
		Command   string         `json:"command"`
		Mint      types.Identity `json:"mint"`
		Caller    types.Identity `json:"caller"`
		Timestamp uint64         `json:"timestamp"`
		Events    []EventJSON    `json:"events"`
	}

	EventJSON struct {
		Type  string      `json:"type"`
		Event types.Event `json:"event"`
	}
)

// DecodeCommand reads JSON command (see CommandRequest) from r and converts it into engine command.
func DecodeCommand(r io.Reader) (*types.Command, error) {
	req := &CommandRequest{}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return nil, fmt.Errorf("%w: decoding command: %w", types.ErrInvalidInstruction, err)
	}
	attr, err := commandAttributes(req.Type, req.Attributes)
	if err != nil {
		return nil, err
	}
	cmd, err := types.NewCommand(req.Type, req.Mint, req.Caller, attr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidInstruction, err)
	}
	return cmd, nil
}

func decodeInstruction(req InstructionRequest) (types.Instruction, error) {
	attr, err := commandAttributes(req.Type, req.Attributes)
	if err != nil {
		return types.Instruction{}, err
	}
	ins, err := types.NewInstruction(req.Type, attr)
	if err != nil {
		return types.Instruction{}, fmt.Errorf("%w: %w", types.ErrInvalidInstruction, err)
	}
	return ins, nil
}

// commandAttributes decodes JSON attributes into the attribute struct of the command type.
func commandAttributes(cmdType string, data json.RawMessage) (any, error) {
	attr := types.AttributesFor(cmdType)
	if attr == nil {
		return nil, fmt.Errorf("%w: unknown command type %q", types.ErrInvalidInstruction, cmdType)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return attr, nil
	}
	if cmdType == types.CmdCreateProposal {
		req := &createProposalRequest{}
		if err := unmarshalStrict(data, req); err != nil {
			return nil, fmt.Errorf("%w: decoding %s attributes: %w", types.ErrInvalidInstruction, cmdType, err)
		}
		ins, err := decodeInstruction(req.Instruction)
		if err != nil {
			return nil, fmt.Errorf("proposal instruction: %w", err)
		}
		return &types.CreateProposalAttributes{Instruction: ins, ExpiresInSeconds: req.ExpiresInSeconds}, nil
	}
	if err := unmarshalStrict(data, attr); err != nil {
		return nil, fmt.Errorf("%w: decoding %s attributes: %w", types.ErrInvalidInstruction, cmdType, err)
	}
	return attr, nil
}

func unmarshalStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func NewCommandResponse(rcpt *types.Receipt) *CommandResponse {
	rsp := &CommandResponse{
		Command:   rcpt.Command,
		Mint:      rcpt.Mint,
		Caller:    rcpt.Caller,
		Timestamp: rcpt.Timestamp,
		Events:    make([]EventJSON, 0, len(rcpt.Events)),
	}
	for _, ev := range rcpt.Events {
		rsp.Events = append(rsp.Events, EventJSON{Type: ev.EventType(), Event: ev})
	}
	return rsp
}
