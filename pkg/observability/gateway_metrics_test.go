package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRecordGatewayCall(t *testing.T) {
	counter := gatewayCallsTotal.WithLabelValues("authnet_aim", "charge", "cc", "approved")
	before := counterValue(t, counter)

	RecordGatewayCall("authnet_aim", "charge", "cc", "approved", 150*time.Millisecond)

	assert.Equal(t, before+1, counterValue(t, counter))
}

func TestRecordGatewayRejection(t *testing.T) {
	counter := gatewayRejectedTotal.WithLabelValues("authnet_cim", "update", "validation")
	before := counterValue(t, counter)

	RecordGatewayRejection("authnet_cim", "update", "validation")

	assert.Equal(t, before+1, counterValue(t, counter))
}
