package types

import "fmt"

// Event is an immutable record of a state change, emitted by successful commands.
type Event interface {
	EventType() string
}

const (
	EventStablecoinInitialized     = "StablecoinInitialized"
	EventRolesUpdated              = "RolesUpdated"
	EventMinterQuotaUpdated        = "MinterQuotaUpdated"
	EventTokensMinted              = "TokensMinted"
	EventTokensBurned              = "TokensBurned"
	EventAccountFrozen             = "AccountFrozen"
	EventAccountThawed             = "AccountThawed"
	EventStablecoinPaused          = "StablecoinPaused"
	EventStablecoinUnpaused        = "StablecoinUnpaused"
	EventTransferExecuted          = "TransferExecuted"
	EventBlacklistAdded            = "BlacklistAdded"
	EventBlacklistRemoved          = "BlacklistRemoved"
	EventWhitelistAdded            = "WhitelistAdded"
	EventWhitelistRemoved          = "WhitelistRemoved"
	EventTokensSeized              = "TokensSeized"
	EventConfigUpdated             = "ConfigUpdated"
	EventMultisigProposalCreated   = "MultisigProposalCreated"
	EventMultisigProposalApproved  = "MultisigProposalApproved"
	EventMultisigProposalExecuted  = "MultisigProposalExecuted"
	EventMultisigProposalCancelled = "MultisigProposalCancelled"
)

type (
	StablecoinInitialized struct {
		Mint      Identity `json:"mint"`
		Authority Identity `json:"authority"`
		Name      string   `json:"name"`
		Symbol    string   `json:"symbol"`
		Decimals  uint8    `json:"decimals"`
		Features  Features `json:"features"`
		Timestamp uint64   `json:"timestamp"`
	}

	RolesUpdated struct {
		Mint      Identity `json:"mint"`
		Target    Identity `json:"target"`
		Roles     Role     `json:"roles"`
		Granted   Role     `json:"granted"`
		Revoked   Role     `json:"revoked"`
		UpdatedBy Identity `json:"updated_by"`
		Timestamp uint64   `json:"timestamp"`
	}

	MinterQuotaUpdated struct {
		Mint      Identity `json:"mint"`
		Minter    Identity `json:"minter"`
		Quota     uint64   `json:"quota"`
		UpdatedBy Identity `json:"updated_by"`
		Timestamp uint64   `json:"timestamp"`
	}

	TokensMinted struct {
		Mint        Identity `json:"mint"`
		Minter      Identity `json:"minter"`
		Recipient   Identity `json:"recipient"`
		Amount      uint64   `json:"amount"`
		TotalSupply uint64   `json:"total_supply"`
		Timestamp   uint64   `json:"timestamp"`
	}

	TokensBurned struct {
		Mint        Identity `json:"mint"`
		Burner      Identity `json:"burner"`
		Account     Identity `json:"account"`
		Amount      uint64   `json:"amount"`
		TotalSupply uint64   `json:"total_supply"`
		Timestamp   uint64   `json:"timestamp"`
	}

	AccountFrozen struct {
		Mint      Identity `json:"mint"`
		Account   Identity `json:"account"`
		By        Identity `json:"by"`
		Timestamp uint64   `json:"timestamp"`
	}

	AccountThawed struct {
		Mint      Identity `json:"mint"`
		Account   Identity `json:"account"`
		By        Identity `json:"by"`
		Timestamp uint64   `json:"timestamp"`
	}

	StablecoinPaused struct {
		Mint      Identity `json:"mint"`
		By        Identity `json:"by"`
		Timestamp uint64   `json:"timestamp"`
	}

	StablecoinUnpaused struct {
		Mint      Identity `json:"mint"`
		By        Identity `json:"by"`
		Timestamp uint64   `json:"timestamp"`
	}

	TransferExecuted struct {
		Mint          Identity `json:"mint"`
		Source        Identity `json:"source"`
		Destination   Identity `json:"destination"`
		Amount        uint64   `json:"amount"`
		Fee           uint64   `json:"fee"`
		NetAmount     uint64   `json:"net_amount"`
		IsWhitelisted bool     `json:"is_whitelisted"`
		IsDelegate    bool     `json:"is_delegate"`
		Timestamp     uint64   `json:"timestamp"`
	}

	BlacklistAdded struct {
		Mint      Identity `json:"mint"`
		Address   Identity `json:"address"`
		Reason    string   `json:"reason"`
		By        Identity `json:"by"`
		Timestamp uint64   `json:"timestamp"`
	}

	BlacklistRemoved struct {
		Mint      Identity `json:"mint"`
		Address   Identity `json:"address"`
		By        Identity `json:"by"`
		Timestamp uint64   `json:"timestamp"`
	}

	WhitelistAdded struct {
		Mint      Identity `json:"mint"`
		Address   Identity `json:"address"`
		Expiry    uint64   `json:"expiry"`
		By        Identity `json:"by"`
		Timestamp uint64   `json:"timestamp"`
	}

	WhitelistRemoved struct {
		Mint      Identity `json:"mint"`
		Address   Identity `json:"address"`
		By        Identity `json:"by"`
		Timestamp uint64   `json:"timestamp"`
	}

	TokensSeized struct {
		Mint      Identity `json:"mint"`
		Source    Identity `json:"source"`
		Treasury  Identity `json:"treasury"`
		Amount    uint64   `json:"amount"`
		Reason    string   `json:"reason"`
		Seizer    Identity `json:"seizer"`
		Timestamp uint64   `json:"timestamp"`
	}

	// ConfigUpdated reports change of a single configuration field.
	ConfigUpdated struct {
		Mint      Identity `json:"mint"`
		Field     string   `json:"field"`
		OldValue  string   `json:"old_value"`
		NewValue  string   `json:"new_value"`
		By        Identity `json:"by"`
		Timestamp uint64   `json:"timestamp"`
	}

	MultisigProposalCreated struct {
		Mint            Identity `json:"mint"`
		ProposalID      Identity `json:"proposal_id"`
		Proposer        Identity `json:"proposer"`
		InstructionType string   `json:"instruction_type"`
		ExpiresAt       uint64   `json:"expires_at"`
		Timestamp       uint64   `json:"timestamp"`
	}

	MultisigProposalApproved struct {
		Mint       Identity `json:"mint"`
		ProposalID Identity `json:"proposal_id"`
		Signer     Identity `json:"signer"`
		Approvals  uint8    `json:"approvals"`
		Threshold  uint8    `json:"threshold"`
		Timestamp  uint64   `json:"timestamp"`
	}

	MultisigProposalExecuted struct {
		Mint            Identity `json:"mint"`
		ProposalID      Identity `json:"proposal_id"`
		Executor        Identity `json:"executor"`
		InstructionType string   `json:"instruction_type"`
		Timestamp       uint64   `json:"timestamp"`
	}

	MultisigProposalCancelled struct {
		Mint       Identity `json:"mint"`
		ProposalID Identity `json:"proposal_id"`
		By         Identity `json:"by"`
		Timestamp  uint64   `json:"timestamp"`
	}
)

func (StablecoinInitialized) EventType() string     { return EventStablecoinInitialized }
func (RolesUpdated) EventType() string              { return EventRolesUpdated }
func (MinterQuotaUpdated) EventType() string        { return EventMinterQuotaUpdated }
func (TokensMinted) EventType() string              { return EventTokensMinted }
func (TokensBurned) EventType() string              { return EventTokensBurned }
func (AccountFrozen) EventType() string             { return EventAccountFrozen }
func (AccountThawed) EventType() string             { return EventAccountThawed }
func (StablecoinPaused) EventType() string          { return EventStablecoinPaused }
func (StablecoinUnpaused) EventType() string        { return EventStablecoinUnpaused }
func (TransferExecuted) EventType() string          { return EventTransferExecuted }
func (BlacklistAdded) EventType() string            { return EventBlacklistAdded }
func (BlacklistRemoved) EventType() string          { return EventBlacklistRemoved }
func (WhitelistAdded) EventType() string            { return EventWhitelistAdded }
func (WhitelistRemoved) EventType() string          { return EventWhitelistRemoved }
func (TokensSeized) EventType() string              { return EventTokensSeized }
func (ConfigUpdated) EventType() string             { return EventConfigUpdated }
func (MultisigProposalCreated) EventType() string   { return EventMultisigProposalCreated }
func (MultisigProposalApproved) EventType() string  { return EventMultisigProposalApproved }
func (MultisigProposalExecuted) EventType() string  { return EventMultisigProposalExecuted }
func (MultisigProposalCancelled) EventType() string { return EventMultisigProposalCancelled }

// NewEvent returns pointer to zero value event of the given type.
func NewEvent(eventType string) (Event, error) {
	switch eventType {
	case EventStablecoinInitialized:
		return &StablecoinInitialized{}, nil
	case EventRolesUpdated:
		return &RolesUpdated{}, nil
	case EventMinterQuotaUpdated:
		return &MinterQuotaUpdated{}, nil
	case EventTokensMinted:
		return &TokensMinted{}, nil
	case EventTokensBurned:
		return &TokensBurned{}, nil
	case EventAccountFrozen:
		return &AccountFrozen{}, nil
	case EventAccountThawed:
		return &AccountThawed{}, nil
	case EventStablecoinPaused:
		return &StablecoinPaused{}, nil
	case EventStablecoinUnpaused:
		return &StablecoinUnpaused{}, nil
	case EventTransferExecuted:
		return &TransferExecuted{}, nil
	case EventBlacklistAdded:
		return &BlacklistAdded{}, nil
	case EventBlacklistRemoved:
		return &BlacklistRemoved{}, nil
	case EventWhitelistAdded:
		return &WhitelistAdded{}, nil
	case EventWhitelistRemoved:
		return &WhitelistRemoved{}, nil
	case EventTokensSeized:
		return &TokensSeized{}, nil
	case EventConfigUpdated:
		return &ConfigUpdated{}, nil
	case EventMultisigProposalCreated:
		return &MultisigProposalCreated{}, nil
	case EventMultisigProposalApproved:
		return &MultisigProposalApproved{}, nil
	case EventMultisigProposalExecuted:
		return &MultisigProposalExecuted{}, nil
	case EventMultisigProposalCancelled:
		return &MultisigProposalCancelled{}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
}

/*
EventRecord is the journal form of an event: sequence number assigned by the
journal plus CBOR encoded event payload.
*/
type EventRecord struct {
	Seq       uint64   `json:"seq"`
	Type      string   `json:"type"`
	Mint      Identity `json:"mint"`
	Command   string   `json:"command"`
	Timestamp uint64   `json:"timestamp"`
	Payload   RawCBOR  `json:"payload"`
}

func NewEventRecord(seq uint64, rcpt *Receipt, ev Event) (*EventRecord, error) {
	payload, err := Encode(ev)
	if err != nil {
		return nil, fmt.Errorf("encoding %s event: %w", ev.EventType(), err)
	}
	return &EventRecord{
		Seq:       seq,
		Type:      ev.EventType(),
		Mint:      rcpt.Mint,
		Command:   rcpt.Command,
		Timestamp: rcpt.Timestamp,
		Payload:   payload,
	}, nil
}

// Event decodes the payload of the record.
func (r *EventRecord) Event() (Event, error) {
	ev, err := NewEvent(r.Type)
	if err != nil {
		return nil, err
	}
	if err := Decode(r.Payload, ev); err != nil {
		return nil, fmt.Errorf("decoding %s event: %w", r.Type, err)
	}
	return ev, nil
}
