//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"escrowbook/internal/domain/booking"
	"escrowbook/internal/pkg/config"
	"escrowbook/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TokenFor mints a bearer token for a party. Identity lives outside this
// service, so tests sign tokens directly with the configured secret instead
// of going through a login endpoint.
func TokenFor(t *testing.T, cfg config.Config, userID uuid.UUID, role booking.Role) string {
	t.Helper()

	duration, err := time.ParseDuration(cfg.JWT.Duration)
	require.NoError(t, err, "invalid JWT duration in test config")

	token, err := jwt.NewService(cfg.JWT.Secret, duration).GenerateToken(userID, role)
	require.NoError(t, err, "failed to sign test token")
	return token
}
