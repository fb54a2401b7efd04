package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	logOutput io.Writer
	listPath  string
	outDir    string
	watch     bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogOutput redirects the JSON log stream (stdout by default).
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

// WithListFile sets the order list exported by RunExport.
func WithListFile(path string) Option {
	return func(a *application) {
		a.listPath = path
	}
}

// WithOutputDir overrides the configured export directory.
func WithOutputDir(dir string) Option {
	return func(a *application) {
		a.outDir = dir
	}
}

// WithWatch makes RunExport re-export whenever the list file changes.
func WithWatch(on bool) Option {
	return func(a *application) {
		a.watch = on
	}
}
