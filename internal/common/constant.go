package common

const (
	// AuthorizationHeaderName is the gRPC metadata key carrying the bearer token.
	AuthorizationHeaderName = "authorization"

	// TokenType is the scheme returned with issued tokens and expected in the
	// authorization header.
	TokenType = "Bearer"
)
