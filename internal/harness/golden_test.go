package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auditlocal/internal/appctx"
	"github.com/roach88/auditlocal/internal/dataaccess"
)

// goldenPipeline creates one opportunity with one suggestion, reads it
// back and sends one guidance message.
type goldenPipeline struct{}

func (goldenPipeline) Init(context.Context, *appctx.Context) (*dataaccess.DataAccess, error) {
	return nil, nil
}

func (goldenPipeline) Handle(ctx context.Context, msg appctx.Message, actx *appctx.Context) (any, error) {
	body, err := msg.Body()
	if err != nil {
		return nil, err
	}
	da := actx.DataAccess

	if _, err := da.Audit.FindLatest(ctx); err != nil {
		return nil, err
	}
	opp, err := da.Opportunity.Create(ctx, dataaccess.Bag{"siteId": body.SiteID, "type": body.Type})
	if err != nil {
		return nil, err
	}
	if _, err := opp.AddSuggestions(ctx, []dataaccess.Bag{
		{"data": map[string]any{"url": "https://a.test/"}},
	}); err != nil {
		return nil, err
	}
	suggestions, err := da.Suggestion.AllByOpportunityIDAndStatus(ctx, opp.ID(), dataaccess.SuggestionStatusNew)
	if err != nil {
		return nil, err
	}
	if _, err := actx.SQS.SendMessage(ctx, "queue-url", map[string]any{"type": "guidance:" + body.Type}); err != nil {
		return nil, err
	}
	return len(suggestions), nil
}

func TestGolden_OpportunityRoundTrip(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/opportunity_round_trip.yaml")
	require.NoError(t, err)

	opts := testOptions(goldenPipeline{})
	opts.Scenario = scenario

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, result.Pass, "%v", result.Errors)
	assert.Equal(t, 1, result.Value)

	require.NoError(t, AssertGolden(t, scenario.Name, result))
}

func TestGolden_Deterministic(t *testing.T) {
	run := func() []byte {
		result, err := Run(context.Background(), testOptions(goldenPipeline{}))
		require.NoError(t, err)
		out, err := Snapshot("determinism", result)
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, string(run()), string(run()))
}
