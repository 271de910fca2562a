package fx

import (
	"kvk-dashboard/internal/server"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
)

func TestModuleGraph(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	err := fx.ValidateApp(
		Module,
		fx.Invoke(func(*server.DashboardServer) {}),
		fx.Invoke(func(prometheus.Registerer, prometheus.Gatherer) {}),
	)
	assert.NoError(t, err)
}
