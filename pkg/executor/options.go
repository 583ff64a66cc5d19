package executor

import "github.com/mudler/fsformats/pkg/logger"

type Options func(d *DefaultExecutor)

func WithLogger(l logger.Interface) Options {
	return func(d *DefaultExecutor) {
		d.logger = l
	}
}

// WithValues sets template values rendered into every loaded layout.
func WithValues(v map[string]string) Options {
	return func(d *DefaultExecutor) {
		d.values = v
	}
}
