package extension

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"regexp"

	"apicase/pkg/logging"

	"github.com/magiconair/properties"
	"github.com/spf13/afero"
)

// dynamicStringPattern matches $file.key references.
var dynamicStringPattern = regexp.MustCompile(`\$(\w+)\.(\w+)`)

// dynamicStrings resolves $file.key against <dir>/<environment>/<file>.properties.
type dynamicStrings struct {
	fs          afero.Fs
	dir         string
	environment string
}

func (d *dynamicStrings) lookup(_ context.Context, call Call) (string, error) {
	m := dynamicStringPattern.FindStringSubmatch(call.Module)
	if m == nil {
		return "", &NotFoundError{Module: call.Module, Function: call.Function}
	}
	file, key := m[1], m[2]
	path := filepath.Join(d.dir, d.environment, file+".properties")

	data, err := afero.ReadFile(d.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Warn("Resolver", "Dynamic strings file %s not found", path)
			return "", ErrNoValue
		}
		return "", err
	}

	props, err := properties.Load(data, properties.UTF8)
	if err != nil {
		return "", err
	}
	value, ok := props.Get(key)
	if !ok {
		logging.Warn("Resolver", "Key %s not found in %s", key, path)
		return "", ErrNoValue
	}
	return value, nil
}
