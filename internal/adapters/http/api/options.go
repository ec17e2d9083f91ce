package api

// defaultMaxUploadBytes caps dataset uploads when no option is given.
const defaultMaxUploadBytes = 10 << 20

type serverConfig struct {
	maxUploadBytes int64
}

// Option applies a configuration option to the Server.
type Option func(*serverConfig)

// WithMaxUploadBytes caps the size of POST /datasets bodies.
func WithMaxUploadBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}
