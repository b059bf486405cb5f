package types

// storage key prefixes, the key is prefix + mint [+ identity]
const (
	prefixStablecoin = "sc|"
	prefixHook       = "hook|"
	prefixRole       = "role|"
	prefixMinter     = "minter|"
	prefixAccount    = "acc|"
	prefixBlacklist  = "bl|"
	prefixWhitelist  = "wl|"
	prefixMultisig   = "msig|"
	prefixProposal   = "prop|"
)

func key(prefix string, ids ...Identity) []byte {
	k := make([]byte, 0, len(prefix)+len(ids)*IdentityLength)
	k = append(k, prefix...)
	for _, id := range ids {
		k = append(k, id[:]...)
	}
	return k
}

func StablecoinKey(mint Identity) []byte { return key(prefixStablecoin, mint) }

func HookConfigKey(mint Identity) []byte { return key(prefixHook, mint) }

func RoleKey(mint, owner Identity) []byte { return key(prefixRole, mint, owner) }

func MinterKey(mint, minter Identity) []byte { return key(prefixMinter, mint, minter) }

func TokenAccountKey(mint, owner Identity) []byte { return key(prefixAccount, mint, owner) }

func BlacklistKey(mint, address Identity) []byte { return key(prefixBlacklist, mint, address) }

func WhitelistKey(mint, address Identity) []byte { return key(prefixWhitelist, mint, address) }

func MultisigKey(mint Identity) []byte { return key(prefixMultisig, mint) }

func ProposalKey(mint, id Identity) []byte { return key(prefixProposal, mint, id) }

// ProposalPrefix is the common key prefix of all the proposals of the mint.
func ProposalPrefix(mint Identity) []byte { return key(prefixProposal, mint) }
