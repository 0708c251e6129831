package offline

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

// ErrInsecureOrigin is returned when the worker would serve a non-secure origin.
var ErrInsecureOrigin = errors.New("worker requires HTTPS")

// Register installs c for origin. Only https origins and localhost are accepted.
// previous is the worker currently in control, or nil.
func Register(ctx context.Context, c *Controller, origin string, previous *Controller, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin: %w", err)
	}
	if u.Scheme != "https" && u.Hostname() != "localhost" {
		logger.Warn("Worker requires HTTPS", zap.String("origin", origin))
		return ErrInsecureOrigin
	}

	logger.Info("Worker registered successfully", zap.String("scope", u.String()))
	logger.Info("Worker update found")

	if err := c.Install(ctx); err != nil {
		logger.Error("Worker registration failed", zap.Error(err))
		return err
	}

	if c.State() == StateInstalled && previous != nil && previous.Status().Controlling {
		logger.Info("New worker installed, ready to activate")
	}
	return nil
}
