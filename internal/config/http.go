package config

type HTTP struct {
	Addr       string `env:"HTTP_ADDR" envDefault:":8080"`
	TLSCert    string `env:"TLS_CERT"`
	TLSKey     string `env:"TLS_KEY"`
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"*"`
}

func (h HTTP) TLS() bool {
	return h.TLSCert != "" && h.TLSKey != ""
}

type Auth struct {
	// TokenKey verifies host-issued session tokens. Empty disables the check.
	TokenKey  string  `env:"TOKEN_KEY" json:"-"`
	RateLimit float64 `env:"RATE_LIMIT" envDefault:"5"`
	RateBurst int     `env:"RATE_BURST" envDefault:"10"`
}
