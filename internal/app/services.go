package app

import (
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/observability"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
	"github.com/yungbote/kgcontent-backend/internal/services"
)

type Services struct {
	Content services.ContentService
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...", "compensate_on_failure", cfg.CompensateOnFailure)

	opts := services.ContentOptions{
		Spec:                pipeline.LoadSpec(log),
		CompensateOnFailure: cfg.CompensateOnFailure,
	}
	if metrics != nil {
		opts.Recorder = metrics
	}
	content, err := services.NewContentService(repos.Ports, log, opts)
	if err != nil {
		return Services{}, err
	}
	return Services{Content: content}, nil
}
