package rbac

import (
	"fmt"

	"github.com/sss-org/sss-engine/state"
	"github.com/sss-org/sss-engine/txsystem"
	"github.com/sss-org/sss-engine/types"
)

var _ txsystem.Module = (*Module)(nil)

/*
Module implements role administration of the mint. Roles are bitmask per
(mint, owner) pair, only MASTER can grant and revoke roles.
*/
type Module struct{}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) TxHandlers() map[string]txsystem.TxExecutor {
	return map[string]txsystem.TxExecutor{
		types.CmdGrantRole:  txsystem.NewTxHandler[types.RoleAttributes](txsystem.GovernanceOptional, m.executeGrantRole),
		types.CmdRevokeRole: txsystem.NewTxHandler[types.RoleAttributes](txsystem.GovernanceOptional, m.executeRevokeRole),
	}
}

/*
RequireRole returns error of kind Unauthorized unless caller holds at least
one of the "roles" bits. Commands executed by the multisig governor are
authorized by the governor so the role check is skipped for those.
*/
func RequireRole(exeCtx txsystem.ExecutionContext, mint, caller types.Identity, roles types.Role) error {
	if exeCtx.Governed() {
		return nil
	}
	ok, err := exeCtx.Accounts().HasRole(mint, caller, roles)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s doesn't have %s role", types.ErrUnauthorized, caller, roles)
	}
	return nil
}

func (m *Module) executeGrantRole(cmd *types.Command, attr *types.RoleAttributes, exeCtx txsystem.ExecutionContext) error {
	return m.updateRoles(cmd, attr, exeCtx, true)
}

func (m *Module) executeRevokeRole(cmd *types.Command, attr *types.RoleAttributes, exeCtx txsystem.ExecutionContext) error {
	return m.updateRoles(cmd, attr, exeCtx, false)
}

func (m *Module) updateRoles(cmd *types.Command, attr *types.RoleAttributes, exeCtx txsystem.ExecutionContext, grant bool) error {
	if _, err := exeCtx.Accounts().Stablecoin(cmd.Mint); err != nil {
		return err
	}
	if err := RequireRole(exeCtx, cmd.Mint, cmd.Caller, types.RoleMaster); err != nil {
		return err
	}

	ev := &types.RolesUpdated{
		Mint:      cmd.Mint,
		Target:    attr.Target,
		UpdatedBy: cmd.Caller,
		Timestamp: exeCtx.Now(),
	}
	err := exeCtx.Accounts().Apply(state.UpdateRoles(cmd.Mint, attr.Target, func(ra *types.RoleAccount) error {
		if grant {
			ra.Roles = ra.Roles.Grant(attr.Roles)
			ev.Granted = attr.Roles
		} else {
			ra.Roles = ra.Roles.Revoke(attr.Roles)
			ev.Revoked = attr.Roles
		}
		ev.Roles = ra.Roles
		return nil
	}))
	if err != nil {
		return fmt.Errorf("updating roles of %s: %w", attr.Target, err)
	}
	exeCtx.Emit(ev)
	return nil
}
