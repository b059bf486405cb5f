package types

// Features is bitmask of the optional token extensions enabled for a mint.
type Features uint8

const (
	FeatureTransferHook Features = 1 << iota
	FeaturePermanentDelegate
	FeatureMintCloseAuthority
	FeatureDefaultFrozenAccounts

	AllFeatures = FeatureTransferHook | FeaturePermanentDelegate | FeatureMintCloseAuthority | FeatureDefaultFrozenAccounts
)

func (f Features) Has(feature Features) bool {
	return f&feature == feature
}

func (f Features) Valid() bool {
	return f&^AllFeatures == 0
}
