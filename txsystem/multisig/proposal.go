package multisig

import (
	"fmt"
	"math/bits"

	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/txsystem"
	"github.com/sss-org/sss-engine/types"
)

func (m *Module) executeCreateProposal(cmd *types.Command, attr *types.CreateProposalAttributes, exeCtx txsystem.ExecutionContext) error {
	accounts := exeCtx.Accounts()
	cfg, err := config(accounts, cmd.Mint)
	if err != nil {
		return err
	}
	if !cfg.IsSigner(cmd.Caller) {
		return fmt.Errorf("%w: %s is not a signer", types.ErrUnauthorized, cmd.Caller)
	}
	// malformed instructions are rejected now rather than at execution
	if err := exeCtx.ValidateInstruction(attr.Instruction); err != nil {
		return err
	}

	now := exeCtx.Now()
	expiresAt, carry := bits.Add64(now, attr.ExpiresInSeconds, 0)
	if carry != 0 {
		return fmt.Errorf("%w: proposal expiry", types.ErrMathOverflow)
	}
	id := types.ProposalID(cmd.Mint, cmd.Caller, now)
	exists, err := accounts.HasProposal(cmd.Mint, id)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s already created a proposal at %d", types.ErrInvalidInstruction, cmd.Caller, now)
	}

	cfg.ProposalCount++
	err = accounts.Apply(
		func(a *state.Accounts) error {
			return a.PutProposal(&types.Proposal{
				ID:          id,
				Mint:        cmd.Mint,
				Proposer:    cmd.Caller,
				Instruction: attr.Instruction,
				Approvals:   []types.Identity{cmd.Caller},
				CreatedAt:   now,
				ExpiresAt:   expiresAt,
			})
		},
		func(a *state.Accounts) error { return a.PutMultisigConfig(cfg) },
	)
	if err != nil {
		return err
	}
	exeCtx.Emit(&types.MultisigProposalCreated{
		Mint:            cmd.Mint,
		ProposalID:      id,
		Proposer:        cmd.Caller,
		InstructionType: attr.Instruction.Type,
		ExpiresAt:       expiresAt,
		Timestamp:       now,
	})
	return nil
}

// checkOpen returns error when the proposal can't be approved or executed anymore.
func checkOpen(p *types.Proposal, now uint64) error {
	switch {
	case p.Executed:
		return fmt.Errorf("%w: proposal %s", types.ErrAlreadyExecuted, p.ID)
	case p.Cancelled:
		return fmt.Errorf("%w: proposal %s", types.ErrProposalCancelled, p.ID)
	case p.IsExpired(now):
		return fmt.Errorf("%w: proposal %s expired at %d", types.ErrProposalExpired, p.ID, p.ExpiresAt)
	}
	return nil
}

func (m *Module) executeApproveProposal(cmd *types.Command, attr *types.ProposalAttributes, exeCtx txsystem.ExecutionContext) error {
	accounts := exeCtx.Accounts()
	cfg, err := config(accounts, cmd.Mint)
	if err != nil {
		return err
	}
	if !cfg.IsSigner(cmd.Caller) {
		return fmt.Errorf("%w: %s is not a signer", types.ErrUnauthorized, cmd.Caller)
	}

	var approvals int
	err = accounts.Apply(state.UpdateProposal(cmd.Mint, attr.ProposalID, func(p *types.Proposal) error {
		if err := checkOpen(p, exeCtx.Now()); err != nil {
			return err
		}
		if p.HasApproved(cmd.Caller) {
			return fmt.Errorf("%w: %s has already approved proposal %s", types.ErrDuplicateApproval, cmd.Caller, p.ID)
		}
		p.Approvals = append(p.Approvals, cmd.Caller)
		approvals = cfg.ApprovalCount(p)
		return nil
	}))
	if err != nil {
		return err
	}
	exeCtx.Emit(&types.MultisigProposalApproved{
		Mint:       cmd.Mint,
		ProposalID: attr.ProposalID,
		Signer:     cmd.Caller,
		Approvals:  uint8(approvals), /* #nosec G115 signers count is limited to MaxSigners */
		Threshold:  cfg.Threshold,
		Timestamp:  exeCtx.Now(),
	})
	return nil
}

/*
executeExecuteProposal runs the instruction of an approved proposal. Anyone
may trigger the execution once the threshold is reached. Failure of the
instruction fails the execution as a whole, the proposal stays open.
*/
func (m *Module) executeExecuteProposal(cmd *types.Command, attr *types.ProposalAttributes, exeCtx txsystem.ExecutionContext) error {
	accounts := exeCtx.Accounts()
	cfg, err := config(accounts, cmd.Mint)
	if err != nil {
		return err
	}
	p, err := accounts.Proposal(cmd.Mint, attr.ProposalID)
	if err != nil {
		return err
	}
	if err := checkOpen(p, exeCtx.Now()); err != nil {
		return err
	}
	if n := cfg.ApprovalCount(p); n < int(cfg.Threshold) {
		return fmt.Errorf("%w: proposal %s has %d approvals, threshold is %d", types.ErrInsufficientApprovals, p.ID, n, cfg.Threshold)
	}

	p.Executed = true
	if err := accounts.PutProposal(p); err != nil {
		return err
	}
	if err := exeCtx.ExecuteGoverned(cmd.Mint, p.Instruction); err != nil {
		return fmt.Errorf("executing proposal %s: %w", p.ID, err)
	}
	exeCtx.Emit(&types.MultisigProposalExecuted{
		Mint:            cmd.Mint,
		ProposalID:      p.ID,
		Executor:        cmd.Caller,
		InstructionType: p.Instruction.Type,
		Timestamp:       exeCtx.Now(),
	})
	return nil
}

func (m *Module) executeCancelProposal(cmd *types.Command, attr *types.ProposalAttributes, exeCtx txsystem.ExecutionContext) error {
	accounts := exeCtx.Accounts()
	cfg, err := config(accounts, cmd.Mint)
	if err != nil {
		return err
	}
	err = accounts.Apply(state.UpdateProposal(cmd.Mint, attr.ProposalID, func(p *types.Proposal) error {
		if p.Proposer != cmd.Caller && !cfg.IsSigner(cmd.Caller) {
			return fmt.Errorf("%w: %s is neither the proposer nor a signer", types.ErrUnauthorized, cmd.Caller)
		}
		switch {
		case p.Executed:
			return fmt.Errorf("%w: proposal %s", types.ErrAlreadyExecuted, p.ID)
		case p.Cancelled:
			return fmt.Errorf("%w: proposal %s", types.ErrProposalCancelled, p.ID)
		}
		p.Cancelled = true
		return nil
	}))
	if err != nil {
		return err
	}
	exeCtx.Emit(&types.MultisigProposalCancelled{
		Mint:       cmd.Mint,
		ProposalID: attr.ProposalID,
		By:         cmd.Caller,
		Timestamp:  exeCtx.Now(),
	})
	return nil
}
