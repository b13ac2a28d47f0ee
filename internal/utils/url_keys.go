package utils

const (
	// IdKey is the key for the account id used in routing parameters.
	IdKey = "id"

	// ResetKeyKey is the key for the password reset key used in routing parameters.
	ResetKeyKey = "reset_key"

	// OffsetParamKey is the key for offset used in pagination query parameters.
	OffsetParamKey = "offset"

	// LimitParamKey is the key for limit used in pagination query parameters.
	LimitParamKey = "limit"
)
