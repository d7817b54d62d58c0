package zones

import (
	"context"
	"log/slog"
	"time"

	"github.com/jroosing/bindzone/internal/hosts"
	"github.com/jroosing/bindzone/internal/storage"
)

// Opener returns a ready Port for a target. The caller releases it.
type Opener func(ctx context.Context, t hosts.Target) (storage.Port, error)

// SSHSettings apply to every remote session the default opener creates.
type SSHSettings struct {
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
	KnownHostsPath   string
}

// NewOpener returns an Opener that uses the local filesystem for loopback
// targets and a fresh SSH session for every other target.
func NewOpener(settings SSHSettings, logger *slog.Logger) Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t hosts.Target) (storage.Port, error) {
		if t.IsLocal() {
			return storage.NewLocal(), nil
		}
		r := storage.NewRemote(storage.RemoteConfig{
			Host:             t.Host,
			Port:             t.Port,
			Username:         t.Username,
			KeyPath:          t.SSHKeyPath,
			Password:         t.Password,
			KnownHostsPath:   settings.KnownHostsPath,
			ConnectTimeout:   settings.ConnectTimeout,
			OperationTimeout: settings.OperationTimeout,
		}, logger.With("server", t.ID))
		if err := r.Connect(ctx); err != nil {
			return nil, err
		}
		return r, nil
	}
}
