package extension

import (
	"time"

	"github.com/spf13/afero"
)

// BuiltinOptions configures RegisterBuiltins.
type BuiltinOptions struct {
	// Fs is used to read dynamic string files. Defaults to the OS filesystem.
	Fs                afero.Fs
	DynamicStringsDir string
	Environment       string
	// Now overrides the clock used by date and timestamp functions.
	Now func() time.Time
}

// RegisterBuiltins registers the MOCK module and installs the $file.key dynamic
// string lookup as the registry fallback.
func RegisterBuiltins(r *Registry, opts BuiltinOptions) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	newMock(opts.Now).register(r)

	ds := &dynamicStrings{fs: opts.Fs, dir: opts.DynamicStringsDir, environment: opts.Environment}
	r.SetFallback(ds.lookup)
}
