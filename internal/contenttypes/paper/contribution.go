package paper

import (
	"context"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/thingdef"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

type ContributionState struct {
	Paper          graph.Resource
	Root           thingdef.Root
	Plan           thingdef.Plan
	ContributionID graph.ThingID
}

type contributionStep = pipeline.Step[CreateContributionCommand, ContributionState]

func (s *Service) contributionSteps() []contributionStep {
	k := s.kit
	return []contributionStep{
		pipeline.Resolver("paper-exists", func(ctx context.Context, cmd CreateContributionCommand, st ContributionState) (ContributionState, error) {
			p, err := s.findPaper(ctx, cmd.PaperID)
			if err != nil {
				return st, err
			}
			st.Paper = p
			return st, nil
		}),
		pipeline.Validator("temp-id-validate", func(_ context.Context, cmd CreateContributionCommand, st ContributionState) (ContributionState, error) {
			if err := thingdef.ValidateTempIDs(cmd.Definitions); err != nil {
				return st, err
			}
			root, err := contributionRoot(0, cmd.Contribution)
			if err != nil {
				return st, err
			}
			st.Root = root
			return st, nil
		}),
		pipeline.Validator("extraction-method-validate", func(_ context.Context, cmd CreateContributionCommand, st ContributionState) (ContributionState, error) {
			return st, actions.ValidateExtractionMethod(cmd.ExtractionMethod)
		}),
		pipeline.Resolver("thing-definition-validate", func(ctx context.Context, cmd CreateContributionCommand, st ContributionState) (ContributionState, error) {
			plan, err := k.ThingValidator.Validate(ctx, cmd.Definitions, nil, st.Root)
			if err != nil {
				return st, err
			}
			st.Plan = plan
			return st, nil
		}),
		pipeline.Creator("contribution-create", func(ctx context.Context, cmd CreateContributionCommand, st ContributionState) (ContributionState, error) {
			validated, err := k.ThingCreator.Create(ctx, st.Plan, thingdef.CreateOptions{
				Contributor:      cmd.Contributor,
				ObservatoryID:    st.Paper.ObservatoryID,
				OrganizationID:   st.Paper.OrganizationID,
				ExtractionMethod: cmd.ExtractionMethod,
			})
			if err != nil {
				return st, err
			}
			ids, err := linkContributions(ctx, k, st.Paper.ID, []thingdef.Root{st.Root}, validated, cmd.Contributor)
			if err != nil {
				return st, err
			}
			st.ContributionID = ids[0]
			return st, nil
		}),
	}
}
