package telemetry

import (
	"context"
	"strings"
	"testing"

	"go-vaccination-booking/config"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
)

func TestInitExposesMetricsToPrometheus(t *testing.T) {
	ctx := context.Background()
	provider, err := Init(ctx, config.AppConfig{Name: "vaccination-booking", Env: "test"}, config.TelemetryConfig{})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() {
		if err := provider.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})

	counter, err := otel.Meter("telemetry-test").Int64Counter("telemetry_probe")
	if err != nil {
		t.Fatalf("Int64Counter() error = %v", err)
	}
	counter.Add(ctx, 3)

	families, err := promclient.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, family := range families {
		if strings.HasPrefix(family.GetName(), "telemetry_probe") {
			if got := family.GetMetric()[0].GetCounter().GetValue(); got != 3 {
				t.Errorf("counter value = %v, want 3", got)
			}
			return
		}
	}
	t.Errorf("telemetry_probe not exported")
}
