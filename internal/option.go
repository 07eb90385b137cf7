package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	mcpStdio bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMCPStdio switches the application into MCP stdio mode: instead of
// the HTTP server, the MCP server is served over stdin/stdout.
func WithMCPStdio() Option {
	return func(a *application) {
		a.mcpStdio = true
	}
}
