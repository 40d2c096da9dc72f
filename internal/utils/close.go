package utils

import (
	"io"

	"github.com/MrSnakeDoc/promoavail/internal/logger"
)

// Close closes c and ignores any error. Use for best-effort cleanup in defer.
func Close(c io.Closer) {
	_ = c.Close()
}

// CloseLogged closes c and logs a failure under what.
func CloseLogged(c io.Closer, what string, log logger.Logger) {
	if err := c.Close(); err != nil {
		log.Warn("close failed", logger.String("resource", what), logger.Error(err))
	}
}
