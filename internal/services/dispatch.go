package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/comparison"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/literaturelist"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/paper"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/template"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
	pkgerrors "github.com/yungbote/kgcontent-backend/internal/pkg/errors"
)

// Operations lists every operation Dispatch accepts.
var Operations = []string{
	paper.OpCreate, paper.OpUpdate, paper.OpCreateContribution,
	template.OpCreate, template.OpUpdate, template.OpCreateProperty, template.OpUpdateProperty,
	literaturelist.OpCreate, literaturelist.OpUpdate,
	literaturelist.OpCreateSection, literaturelist.OpUpdateSection, literaturelist.OpDeleteSection,
	comparison.OpCreate, comparison.OpUpdate,
}

// Dispatch decodes payload as the command of operation and runs it. Update
// and delete operations return the id of the entity they touched.
func Dispatch(ctx context.Context, svc ContentService, operation string, payload []byte) (graph.ThingID, error) {
	switch operation {
	case paper.OpCreate:
		return runDecoded(payload, func(cmd paper.CreateCommand) (graph.ThingID, error) { return svc.CreatePaper(ctx, cmd) })
	case paper.OpUpdate:
		return runDecoded(payload, func(cmd paper.UpdateCommand) (graph.ThingID, error) { return cmd.PaperID, svc.UpdatePaper(ctx, cmd) })
	case paper.OpCreateContribution:
		return runDecoded(payload, func(cmd paper.CreateContributionCommand) (graph.ThingID, error) {
			return svc.CreateContribution(ctx, cmd)
		})
	case template.OpCreate:
		return runDecoded(payload, func(cmd template.CreateCommand) (graph.ThingID, error) { return svc.CreateTemplate(ctx, cmd) })
	case template.OpUpdate:
		return runDecoded(payload, func(cmd template.UpdateCommand) (graph.ThingID, error) {
			return cmd.TemplateID, svc.UpdateTemplate(ctx, cmd)
		})
	case template.OpCreateProperty:
		return runDecoded(payload, func(cmd template.CreatePropertyCommand) (graph.ThingID, error) {
			return svc.CreateTemplateProperty(ctx, cmd)
		})
	case template.OpUpdateProperty:
		return runDecoded(payload, func(cmd template.UpdatePropertyCommand) (graph.ThingID, error) {
			return cmd.PropertyID, svc.UpdateTemplateProperty(ctx, cmd)
		})
	case literaturelist.OpCreate:
		return runDecoded(payload, func(cmd literaturelist.CreateCommand) (graph.ThingID, error) {
			return svc.CreateLiteratureList(ctx, cmd)
		})
	case literaturelist.OpUpdate:
		return runDecoded(payload, func(cmd literaturelist.UpdateCommand) (graph.ThingID, error) {
			return cmd.ListID, svc.UpdateLiteratureList(ctx, cmd)
		})
	case literaturelist.OpCreateSection:
		return runDecoded(payload, func(cmd literaturelist.CreateSectionCommand) (graph.ThingID, error) {
			return svc.CreateLiteratureListSection(ctx, cmd)
		})
	case literaturelist.OpUpdateSection:
		return runDecoded(payload, func(cmd literaturelist.UpdateSectionCommand) (graph.ThingID, error) {
			return cmd.SectionID, svc.UpdateLiteratureListSection(ctx, cmd)
		})
	case literaturelist.OpDeleteSection:
		return runDecoded(payload, func(cmd literaturelist.DeleteSectionCommand) (graph.ThingID, error) {
			return cmd.SectionID, svc.DeleteLiteratureListSection(ctx, cmd)
		})
	case comparison.OpCreate:
		return runDecoded(payload, func(cmd comparison.CreateCommand) (graph.ThingID, error) { return svc.CreateComparison(ctx, cmd) })
	case comparison.OpUpdate:
		return runDecoded(payload, func(cmd comparison.UpdateCommand) (graph.ThingID, error) {
			return cmd.ComparisonID, svc.UpdateComparison(ctx, cmd)
		})
	}
	return "", fmt.Errorf("%w: unknown operation %q", pkgerrors.ErrInvalidArgument, operation)
}

func decode[C any](payload []byte) (C, error) {
	var cmd C
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cmd); err != nil {
		var dup *errs.DuplicateTempIDError
		if errors.As(err, &dup) {
			return cmd, dup
		}
		return cmd, fmt.Errorf("%w: decode command: %v", pkgerrors.ErrInvalidArgument, err)
	}
	return cmd, nil
}

func runDecoded[C any](payload []byte, fn func(C) (graph.ThingID, error)) (graph.ThingID, error) {
	cmd, err := decode[C](payload)
	if err != nil {
		return "", err
	}
	id, err := fn(cmd)
	if err != nil {
		return "", err
	}
	return id, nil
}
