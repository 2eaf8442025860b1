//go:build headless

package audio

import (
	"github.com/charmbracelet/log"
)

// NewOutput returns a paced output; headless builds have no sound device.
func NewOutput(engine *Engine, logger *log.Logger) (Output, error) {
	if logger == nil {
		logger = log.Default()
	}
	logger.Info("headless build, audio is rendered silently")
	return NewPacedOutput(engine, 0), nil
}
