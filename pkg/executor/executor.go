package executor

import (
	"strings"

	"github.com/mudler/fsformats/pkg/formats"
	"github.com/mudler/fsformats/pkg/logger"
	"github.com/mudler/fsformats/pkg/schema"
	"github.com/twpayne/go-vfs/v4"
)

// Executor applies filesystem layouts
type Executor interface {
	Apply(schema.Config, vfs.FS, formats.Console) error
	Run(vfs.FS, formats.Console, ...string) error
	Steps([]Step)
	Values(map[string]string)
}

// Step acts on a single layout entry. fsys is already bound to the entry device.
type Step func(logger.Interface, schema.Filesystem, *formats.Filesystem) error

// NewExecutor returns an executor from the stringified version of it.
func NewExecutor(s string, opts ...Options) Executor {
	switch strings.ToLower(s) {
	default:
		e := &DefaultExecutor{
			steps: []Step{
				CreateStep,
				UUIDStep,
				LabelStep,
				VerifyStep,
			},
			logger: logger.NewLogger(),
		}
		for _, o := range opts {
			o(e)
		}
		return e
	}
}
