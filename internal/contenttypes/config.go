// Package contenttypes carries the wiring shared by the content-type
// packages (paper, template, literaturelist, comparison).
package contenttypes

import (
	"errors"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
)

type Config struct {
	Kit      *actions.Kit
	Log      *logger.Logger
	Recorder pipeline.Recorder
	// Spec overrides step order per operation; nil keeps the coded order.
	Spec *pipeline.Spec
}

func (c Config) Validate() error {
	if c.Kit == nil {
		return errors.New("contenttypes: helper kit required")
	}
	return nil
}

func (c Config) Logger() *logger.Logger {
	if c.Log == nil {
		return logger.Nop()
	}
	return c.Log
}

// Options returns the pipeline options for operation.
func (c Config) Options(operation string) pipeline.Options {
	return pipeline.Options{
		Log:      c.Logger(),
		Recorder: c.Recorder,
		Order:    c.Spec.Order(operation),
	}
}
