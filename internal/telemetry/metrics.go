package telemetry

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/detectors/aws/ecs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/IliaW/robots-api/config"
	"github.com/google/uuid"
)

var meter metric.Meter

type MetricsProvider struct {
	ApiMetrics *ApiMetrics
	Close      func()
}

type ApiMetrics struct {
	RenderSuccessCounter func(count int64)
	RenderErrorCounter   func(count int64)
	RuleChangeCounter    func(count int64)
}

func SetupMetrics(ctx context.Context, cfg *config.Config) *MetricsProvider {
	metricsProvider := new(MetricsProvider)
	var meterProvider *sdkmetric.MeterProvider
	enabled := cfg.TelemetrySettings != nil && cfg.TelemetrySettings.Enabled

	if enabled {
		r, err := newResource(cfg)
		if err != nil {
			slog.Error("failed to get resource.", slog.String("err", err.Error()))
			os.Exit(1)
		}
		exporter, err := newMetricExporter(ctx, cfg.TelemetrySettings)
		if err != nil {
			slog.Error("failed to get metric exporter.", slog.String("err", err.Error()))
			os.Exit(1)
		}
		meterProvider = newMeterProvider(exporter, *r)
		otel.SetMeterProvider(meterProvider)
	}

	meter = otel.Meter(cfg.ServiceName)
	metricsProvider.Close = func() {
		if meterProvider != nil {
			err := meterProvider.Shutdown(ctx)
			if err != nil {
				slog.Error("failed to shutdown metrics provider.", slog.String("err", err.Error()))
			}
		}
	}

	renderSuccessCounter, err := meter.Int64Counter("robots-api.render.success",
		metric.WithDescription("The number of robots.txt bodies rendered or served from cache."),
		metric.WithUnit("{responses}"))
	if err != nil {
		slog.Error("failed to create render success counter.", slog.String("err", err.Error()))
		os.Exit(1)
	}
	renderErrorCounter, err := meter.Int64Counter("robots-api.render.error",
		metric.WithDescription("The number of robots.txt requests that failed to resolve a policy."),
		metric.WithUnit("{responses}"))
	if err != nil {
		slog.Error("failed to create render error counter.", slog.String("err", err.Error()))
		os.Exit(1)
	}
	ruleChangeCounter, err := meter.Int64Counter("robots-api.rule.change",
		metric.WithDescription("The number of stored path rules created or deleted."),
		metric.WithUnit("{rules}"))
	if err != nil {
		slog.Error("failed to create rule change counter.", slog.String("err", err.Error()))
		os.Exit(1)
	}
	add := func(counter metric.Int64Counter) func(int64) {
		return func(count int64) {
			if enabled {
				counter.Add(ctx, count)
			}
		}
	}
	metricsProvider.ApiMetrics = &ApiMetrics{
		RenderSuccessCounter: add(renderSuccessCounter),
		RenderErrorCounter:   add(renderErrorCounter),
		RuleChangeCounter:    add(ruleChangeCounter),
	}

	return metricsProvider
}

func newResource(cfg *config.Config) (*resource.Resource, error) {
	ecsResourceDetector := ecs.NewResourceDetector()
	ecsResource, err := ecsResourceDetector.Detect(context.Background())
	if err != nil {
		slog.Error("ecs detection failed", slog.String("err", err.Error()))
	}
	mergedResource, err := resource.Merge(ecsResource, resource.Default())
	if err != nil {
		slog.Error("failed to merge resources", slog.String("err", err.Error()))
	}
	keyValue, found := ecsResource.Set().Value("container.id")
	var serviceId string
	if found {
		serviceId = keyValue.AsString()
	} else {
		serviceId = uuid.New().String()
	}
	return resource.Merge(mergedResource,
		resource.NewWithAttributes(semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Env),
			semconv.ServiceInstanceID(serviceId),
		))
}

func newMetricExporter(ctx context.Context, cfg *config.TelemetryConfig) (sdkmetric.Exporter, error) {
	return otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(cfg.CollectorUrl),
		otlpmetrichttp.WithInsecure())
}

func newMeterProvider(meterExporter sdkmetric.Exporter, resource resource.Resource) *sdkmetric.MeterProvider {
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(meterExporter)),
		sdkmetric.WithResource(&resource),
	)
	return meterProvider
}
