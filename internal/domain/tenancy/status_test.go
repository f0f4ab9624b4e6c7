package tenancy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Conversa-api/internal/domain/entity"
	"github.com/jhoicas/Conversa-api/internal/domain/tenancy"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests NormalizeGatewayState — mapeo del estado crudo del gateway
// ──────────────────────────────────────────────────────────────────────────────

func TestNormalizeGatewayState(t *testing.T) {
	cases := []struct {
		raw  string
		want entity.InstanceStatus
	}{
		{"open", entity.InstanceConnected},
		{"connected", entity.InstanceConnected},
		{"online", entity.InstanceConnected},
		{"CONNECTING", entity.InstanceConnecting},
		{"pairing", entity.InstanceConnecting},
		{"close", entity.InstanceDisconnected},
		{"baz", entity.InstanceDisconnected},
		{"", entity.InstanceDisconnected},
		{"  Open  ", entity.InstanceConnected},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tenancy.NormalizeGatewayState(tc.raw), "raw=%q", tc.raw)
	}
}
