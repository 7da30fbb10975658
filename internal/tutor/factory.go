package tutor

import (
	"context"
	"errors"

	"github.com/kevinraymond/homeschool/internal/metrics"
)

// New builds and initializes a tutor for cfg.Mode.
//
//   - cloud: the cloud tutor, or its error.
//   - local: the local tutor; on failure a warning is logged and the cloud
//     tutor is used instead.
//   - auto: as local, logged at info level.
//
// With cfg.LocalOnly set the local error is returned and the cloud is never
// contacted.
func New(ctx context.Context, cfg Config, opts ...Option) (Tutor, error) {
	if cfg.Mode == "" {
		cfg.Mode = ModeAuto
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := buildOptions(opts).log.With("component", "tutor")

	if cfg.Mode == ModeCloud {
		return newCloud(ctx, cfg, opts)
	}

	local := NewLocalTutor(cfg, opts...)
	localErr := local.Initialize(ctx)
	if localErr == nil {
		log.Info("using local tutor", "model", local.model)
		return local, nil
	}
	if cfg.LocalOnly {
		return nil, localErr
	}

	if cfg.Mode == ModeLocal {
		log.Warn("local tutor failed, falling back to cloud", "error", localErr)
	} else {
		log.Info("using cloud tutor (local not available)", "error", localErr)
	}
	metrics.TutorFallbacks.Inc()

	t, err := newCloud(ctx, cfg, opts)
	if err != nil {
		return nil, errors.Join(localErr, err)
	}
	return t, nil
}

func newCloud(ctx context.Context, cfg Config, opts []Option) (*CloudTutor, error) {
	t := NewCloudTutor(cfg, opts...)
	if err := t.Initialize(ctx); err != nil {
		return nil, err
	}
	return t, nil
}
