package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/sss-org/sss-engine/txsystem/compliance"
	"github.com/sss-org/sss-engine/txsystem/stablecoin"
	"github.com/sss-org/sss-engine/types"
)

type (
	stablecoinSystem interface {
		Execute(ctx context.Context, cmd *types.Command) (*types.Receipt, error)
		Stablecoin(mint types.Identity) (*types.StablecoinState, error)
		HookConfig(mint types.Identity) (*types.HookConfig, error)
		Roles(mint, owner types.Identity) (*types.RoleAccount, error)
		TokenAccount(mint, owner types.Identity) (*types.TokenAccount, error)
		Minter(mint, minter types.Identity) (*types.MinterInfo, error)
		BlacklistEntry(mint, address types.Identity) (*types.BlacklistEntry, error)
		WhitelistEntry(mint, address types.Identity) (*types.WhitelistEntry, error)
		MultisigConfig(mint types.Identity) (*types.MultisigConfig, error)
		Proposal(mint, id types.Identity) (*stablecoin.ProposalInfo, error)
		Proposals(mint types.Identity) ([]*stablecoin.ProposalInfo, error)
		PreviewTransfer(req compliance.TransferRequest, now uint64) (*compliance.Verdict, error)
	}

	// RolesResponse lists the role names next to the role bits.
	RolesResponse struct {
		*types.RoleAccount
		Names []string `json:"names"`
	}

	// TransferPreviewRequest is the body of the transfer preview request, Timestamp 0 means "now".
	TransferPreviewRequest struct {
		Caller      types.Identity `json:"caller"`
		Source      types.Identity `json:"source"`
		Destination types.Identity `json:"destination"`
		Amount      uint64         `json:"amount"`
		Timestamp   uint64         `json:"timestamp,omitempty"`
	}
)

/*
StablecoinEndpoints registers command execution and query endpoints of the
stablecoin engine.
*/
func StablecoinEndpoints(sys stablecoinSystem, log *slog.Logger) RegistrarFunc {
	return func(r *mux.Router) {
		r.HandleFunc("/commands", executeCommand(sys, log)).Methods(http.MethodPost, http.MethodOptions)
		r.HandleFunc("/mints/{mint}/transfer-preview", previewTransfer(sys, log)).Methods(http.MethodPost, http.MethodOptions)

		r.HandleFunc("/mints/{mint}", query(log, func(r *http.Request, mint types.Identity) (any, error) {
			return sys.Stablecoin(mint)
		})).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/mints/{mint}/hook", query(log, func(r *http.Request, mint types.Identity) (any, error) {
			return sys.HookConfig(mint)
		})).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/mints/{mint}/roles/{owner}", query(log, func(r *http.Request, mint types.Identity) (any, error) {
			owner, err := pathIdentity(r, "owner")
			if err != nil {
				return nil, err
			}
			acc, err := sys.Roles(mint, owner)
			if err != nil {
				return nil, err
			}
			return &RolesResponse{RoleAccount: acc, Names: roleNames(acc.Roles)}, nil
		})).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/mints/{mint}/accounts/{owner}", query(log, func(r *http.Request, mint types.Identity) (any, error) {
			owner, err := pathIdentity(r, "owner")
			if err != nil {
				return nil, err
			}
			return sys.TokenAccount(mint, owner)
		})).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/mints/{mint}/minters/{minter}", query(log, func(r *http.Request, mint types.Identity) (any, error) {
			minter, err := pathIdentity(r, "minter")
			if err != nil {
				return nil, err
			}
			return sys.Minter(mint, minter)
		})).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/mints/{mint}/blacklist/{address}", query(log, func(r *http.Request, mint types.Identity) (any, error) {
			address, err := pathIdentity(r, "address")
			if err != nil {
				return nil, err
			}
			return sys.BlacklistEntry(mint, address)
		})).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/mints/{mint}/whitelist/{address}", query(log, func(r *http.Request, mint types.Identity) (any, error) {
			address, err := pathIdentity(r, "address")
			if err != nil {
				return nil, err
			}
			return sys.WhitelistEntry(mint, address)
		})).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/mints/{mint}/multisig", query(log, func(r *http.Request, mint types.Identity) (any, error) {
			return sys.MultisigConfig(mint)
		})).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/mints/{mint}/proposals", query(log, func(r *http.Request, mint types.Identity) (any, error) {
			return sys.Proposals(mint)
		})).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/mints/{mint}/proposals/{id}", query(log, func(r *http.Request, mint types.Identity) (any, error) {
			id, err := pathIdentity(r, "id")
			if err != nil {
				return nil, err
			}
			return sys.Proposal(mint, id)
		})).Methods(http.MethodGet, http.MethodOptions)
	}
}

func executeCommand(sys stablecoinSystem, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		cmd, err := DecodeCommand(r.Body)
		if err != nil {
			writeError(w, r, err, log)
			return
		}
		rcpt, err := sys.Execute(r.Context(), cmd)
		if err != nil {
			writeError(w, r, err, log)
			return
		}
		writeJSON(w, r, http.StatusOK, NewCommandResponse(rcpt), log)
	}
}

func previewTransfer(sys stablecoinSystem, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		mint, err := pathIdentity(r, "mint")
		if err != nil {
			writeError(w, r, err, log)
			return
		}
		req := &TransferPreviewRequest{}
		if err := unmarshalBody(r, req); err != nil {
			writeError(w, r, err, log)
			return
		}
		verdict, err := sys.PreviewTransfer(compliance.TransferRequest{
			Mint:        mint,
			Caller:      req.Caller,
			Source:      req.Source,
			Destination: req.Destination,
			Amount:      req.Amount,
		}, req.Timestamp)
		if err != nil {
			writeError(w, r, err, log)
			return
		}
		writeJSON(w, r, http.StatusOK, verdict, log)
	}
}

/*
query returns handler which parses the "mint" path variable and writes the
result of the query function as JSON.
*/
func query(log *slog.Logger, q func(r *http.Request, mint types.Identity) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mint, err := pathIdentity(r, "mint")
		if err != nil {
			writeError(w, r, err, log)
			return
		}
		rsp, err := q(r, mint)
		if err != nil {
			writeError(w, r, err, log)
			return
		}
		writeJSON(w, r, http.StatusOK, rsp, log)
	}
}

func pathIdentity(r *http.Request, name string) (types.Identity, error) {
	id, err := types.ParseIdentity(mux.Vars(r)[name])
	if err != nil {
		return types.Identity{}, fmt.Errorf("%w: invalid %s: %w", types.ErrInvalidInstruction, name, err)
	}
	return id, nil
}

func queryUint64(r *http.Request, name string, def uint64) (uint64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s parameter: %w", types.ErrInvalidInstruction, name, err)
	}
	return v, nil
}

func unmarshalBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decoding request body: %w", types.ErrInvalidInstruction, err)
	}
	return nil
}

func roleNames(roles types.Role) []string {
	if roles == 0 {
		return []string{}
	}
	return strings.Split(roles.String(), "|")
}
