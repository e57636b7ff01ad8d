package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/grafana/pyroscope-go"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// profileTypes are collected when profiling is on
var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseObjects,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

func startProfiler(cfg config.TelemetryConfig, logger *zap.Logger) (*pyroscope.Profiler, error) {
	if cfg.PyroscopeURL == "" {
		return nil, errors.New("telemetry.pyroscope_url is required when profiling is enabled")
	}

	tags := map[string]string{}
	if host := os.Getenv("HOSTNAME"); host != "" {
		tags["hostname"] = host
	}

	prof, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.PyroscopeURL,
		Logger:          pyroscopeLogger{logger.Sugar().Named("pyroscope")},
		Tags:            tags,
		ProfileTypes:    profileTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start pyroscope profiler: %w", err)
	}
	logger.Info("Continuous profiling started", zap.String("server", cfg.PyroscopeURL))
	return prof, nil
}

// WithProfileLabels runs fn with pprof labels attached, so samples taken
// inside can be filtered by route or job in Pyroscope.
func WithProfileLabels(ctx context.Context, fn func(context.Context), kv ...string) {
	pyroscope.TagWrapper(ctx, pyroscope.Labels(kv...), fn)
}

type pyroscopeLogger struct {
	s *zap.SugaredLogger
}

func (l pyroscopeLogger) Infof(format string, args ...any)  { l.s.Debugf(format, args...) }
func (l pyroscopeLogger) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l pyroscopeLogger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }
