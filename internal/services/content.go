package services

import (
	"context"
	"errors"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/comparison"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/literaturelist"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/paper"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/template"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
	"github.com/yungbote/kgcontent-backend/internal/pkg/ctxutil"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
)

type ContentService interface {
	CreatePaper(ctx context.Context, cmd paper.CreateCommand) (graph.ThingID, error)
	UpdatePaper(ctx context.Context, cmd paper.UpdateCommand) error
	CreateContribution(ctx context.Context, cmd paper.CreateContributionCommand) (graph.ThingID, error)

	CreateTemplate(ctx context.Context, cmd template.CreateCommand) (graph.ThingID, error)
	UpdateTemplate(ctx context.Context, cmd template.UpdateCommand) error
	CreateTemplateProperty(ctx context.Context, cmd template.CreatePropertyCommand) (graph.ThingID, error)
	UpdateTemplateProperty(ctx context.Context, cmd template.UpdatePropertyCommand) error

	CreateLiteratureList(ctx context.Context, cmd literaturelist.CreateCommand) (graph.ThingID, error)
	UpdateLiteratureList(ctx context.Context, cmd literaturelist.UpdateCommand) error
	CreateLiteratureListSection(ctx context.Context, cmd literaturelist.CreateSectionCommand) (graph.ThingID, error)
	UpdateLiteratureListSection(ctx context.Context, cmd literaturelist.UpdateSectionCommand) error
	DeleteLiteratureListSection(ctx context.Context, cmd literaturelist.DeleteSectionCommand) error

	CreateComparison(ctx context.Context, cmd comparison.CreateCommand) (graph.ThingID, error)
	UpdateComparison(ctx context.Context, cmd comparison.UpdateCommand) error
}

type ContentOptions struct {
	Recorder pipeline.Recorder
	Spec     *pipeline.Spec
	// CompensateOnFailure undoes the creates of a failed run.
	CompensateOnFailure bool
}

type contentService struct {
	log         *logger.Logger
	papers      *paper.Service
	templates   *template.Service
	lists       *literaturelist.Service
	comparisons *comparison.Service
	compensator *Compensator
}

func NewContentService(repos ports.Repositories, baseLog *logger.Logger, opts ContentOptions) (ContentService, error) {
	if baseLog == nil {
		return nil, errors.New("content service: logger required")
	}
	s := &contentService{log: baseLog.With("service", "ContentService")}
	if opts.CompensateOnFailure {
		s.compensator = NewCompensator(repos, baseLog)
		repos = journalRepositories(repos)
	}
	cfg := contenttypes.Config{
		Kit:      actions.NewKit(repos),
		Log:      baseLog,
		Recorder: opts.Recorder,
		Spec:     opts.Spec,
	}

	var err error
	if s.papers, err = paper.New(cfg); err != nil {
		return nil, err
	}
	if s.templates, err = template.New(cfg); err != nil {
		return nil, err
	}
	if s.lists, err = literaturelist.New(cfg); err != nil {
		return nil, err
	}
	if s.comparisons, err = comparison.New(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// run executes fn and, when compensation is on, undoes the writes of a
// failed run. The pipeline error is always the one returned.
func (s *contentService) run(ctx context.Context, operation string, fn func(context.Context) error) error {
	if s.compensator == nil {
		return fn(ctx)
	}
	jctx, journal := ctxutil.WithWriteJournal(ctx)
	err := fn(jctx)
	if err == nil {
		return nil
	}
	if status, cerr := s.compensator.Compensate(ctx, operation, journal); cerr != nil {
		s.log.Error("compensation incomplete", "operation", operation, "status", status, "error", cerr)
	}
	return err
}

func runCreate(s *contentService, ctx context.Context, operation string, fn func(context.Context) (graph.ThingID, error)) (graph.ThingID, error) {
	var id graph.ThingID
	err := s.run(ctx, operation, func(ctx context.Context) error {
		var err error
		id, err = fn(ctx)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *contentService) CreatePaper(ctx context.Context, cmd paper.CreateCommand) (graph.ThingID, error) {
	return runCreate(s, ctx, paper.OpCreate, func(ctx context.Context) (graph.ThingID, error) {
		return s.papers.Create(ctx, cmd)
	})
}

func (s *contentService) UpdatePaper(ctx context.Context, cmd paper.UpdateCommand) error {
	return s.run(ctx, paper.OpUpdate, func(ctx context.Context) error {
		return s.papers.Update(ctx, cmd)
	})
}

func (s *contentService) CreateContribution(ctx context.Context, cmd paper.CreateContributionCommand) (graph.ThingID, error) {
	return runCreate(s, ctx, paper.OpCreateContribution, func(ctx context.Context) (graph.ThingID, error) {
		return s.papers.CreateContribution(ctx, cmd)
	})
}

func (s *contentService) CreateTemplate(ctx context.Context, cmd template.CreateCommand) (graph.ThingID, error) {
	return runCreate(s, ctx, template.OpCreate, func(ctx context.Context) (graph.ThingID, error) {
		return s.templates.Create(ctx, cmd)
	})
}

func (s *contentService) UpdateTemplate(ctx context.Context, cmd template.UpdateCommand) error {
	return s.run(ctx, template.OpUpdate, func(ctx context.Context) error {
		return s.templates.Update(ctx, cmd)
	})
}

func (s *contentService) CreateTemplateProperty(ctx context.Context, cmd template.CreatePropertyCommand) (graph.ThingID, error) {
	return runCreate(s, ctx, template.OpCreateProperty, func(ctx context.Context) (graph.ThingID, error) {
		return s.templates.CreateProperty(ctx, cmd)
	})
}

func (s *contentService) UpdateTemplateProperty(ctx context.Context, cmd template.UpdatePropertyCommand) error {
	return s.run(ctx, template.OpUpdateProperty, func(ctx context.Context) error {
		return s.templates.UpdateProperty(ctx, cmd)
	})
}

func (s *contentService) CreateLiteratureList(ctx context.Context, cmd literaturelist.CreateCommand) (graph.ThingID, error) {
	return runCreate(s, ctx, literaturelist.OpCreate, func(ctx context.Context) (graph.ThingID, error) {
		return s.lists.Create(ctx, cmd)
	})
}

func (s *contentService) UpdateLiteratureList(ctx context.Context, cmd literaturelist.UpdateCommand) error {
	return s.run(ctx, literaturelist.OpUpdate, func(ctx context.Context) error {
		return s.lists.Update(ctx, cmd)
	})
}

func (s *contentService) CreateLiteratureListSection(ctx context.Context, cmd literaturelist.CreateSectionCommand) (graph.ThingID, error) {
	return runCreate(s, ctx, literaturelist.OpCreateSection, func(ctx context.Context) (graph.ThingID, error) {
		return s.lists.CreateSection(ctx, cmd)
	})
}

func (s *contentService) UpdateLiteratureListSection(ctx context.Context, cmd literaturelist.UpdateSectionCommand) error {
	return s.run(ctx, literaturelist.OpUpdateSection, func(ctx context.Context) error {
		return s.lists.UpdateSection(ctx, cmd)
	})
}

func (s *contentService) DeleteLiteratureListSection(ctx context.Context, cmd literaturelist.DeleteSectionCommand) error {
	return s.run(ctx, literaturelist.OpDeleteSection, func(ctx context.Context) error {
		return s.lists.DeleteSection(ctx, cmd)
	})
}

func (s *contentService) CreateComparison(ctx context.Context, cmd comparison.CreateCommand) (graph.ThingID, error) {
	return runCreate(s, ctx, comparison.OpCreate, func(ctx context.Context) (graph.ThingID, error) {
		return s.comparisons.Create(ctx, cmd)
	})
}

func (s *contentService) UpdateComparison(ctx context.Context, cmd comparison.UpdateCommand) error {
	return s.run(ctx, comparison.OpUpdate, func(ctx context.Context) error {
		return s.comparisons.Update(ctx, cmd)
	})
}
