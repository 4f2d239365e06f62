package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coredb/coredb/internal/schema"
)

func TestEstimateRiskTakesMaximum(t *testing.T) {
	indexAction := Action{Kind: ActionAddIndex}
	renameAction := Action{Kind: ActionRenameField}
	assert.Equal(t, RiskMedium, EstimateRisk([]Action{indexAction, renameAction}))
}

func TestEstimateRiskAddFieldRequiredNoDefault(t *testing.T) {
	field := schema.NewSchemaField("age", schema.TypeInt).WithNullable(false)
	assert.Equal(t, RiskHigh, EstimateRisk([]Action{{Kind: ActionAddField, Field: &field}}))

	withDefault := field.WithDefault("0")
	assert.Equal(t, RiskLow, EstimateRisk([]Action{{Kind: ActionAddField, Field: &withDefault}}))
}

func TestNeedsManualReview(t *testing.T) {
	assert.True(t, NeedsManualReview([]Action{{Kind: ActionDropSchema}}))
	assert.True(t, NeedsManualReview([]Action{{Kind: ActionRemoveField}}))
	assert.True(t, NeedsManualReview([]Action{{Kind: ActionRawSQL}}))
	assert.False(t, NeedsManualReview([]Action{{Kind: ActionAddField}, {Kind: ActionAddIndex}}))
}

func TestMigrationApplyIsOneWay(t *testing.T) {
	m := NewMigration("add age field", []Action{{Kind: ActionAddField}})
	assert.False(t, m.Applied)

	m.Apply()
	assert.True(t, m.Applied)
	firstAppliedAt := *m.AppliedAt

	m.Apply()
	assert.Equal(t, firstAppliedAt, *m.AppliedAt)
}
