package auth

import (
	"log/slog"

	"github.com/adportal/adportal/internal/directory"
)

// BindVerifier verifies credentials by opening and immediately closing a
// directory session bound as the user.
type BindVerifier struct {
	config directory.Config
	logger *slog.Logger
}

func NewBindVerifier(config directory.Config, logger *slog.Logger) *BindVerifier {
	return &BindVerifier{config: config, logger: logger}
}

func (v *BindVerifier) Verify(login, password string) error {
	session, err := directory.Authenticate(v.config, login, password, v.logger)
	if err != nil {
		return err
	}
	session.Close()
	return nil
}
