package constants

import "errors"

// Configuration errors.
var (
	ErrSSLOnlyInDev = errors.New("skipSSL is only allowed in development environments (set FORGE_DEV_MODE=true)")
)
