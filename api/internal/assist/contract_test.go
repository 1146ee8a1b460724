package assist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReport = `{
  "summary": "Mild anaemia, otherwise normal.",
  "predictions": [{"disease": "Iron deficiency anaemia", "probability": 62}],
  "healthScore": 78,
  "recommendations": ["Repeat CBC in 3 months", "Increase dietary iron"]
}`

func TestValidate_Report(t *testing.T) {
	var out ReportAnalysis
	require.NoError(t, Validate(ReportContract, validReport, &out))

	assert.Equal(t, "Mild anaemia, otherwise normal.", out.Summary)
	assert.Equal(t, 78, out.HealthScore)
	require.Len(t, out.Predictions, 1)
	assert.Equal(t, Prediction{Disease: "Iron deficiency anaemia", Probability: 62}, out.Predictions[0])
	assert.Len(t, out.Recommendations, 2)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		contract *Contract
		raw      string
		kind     error
	}{
		{"empty", ReportContract, "   ", ErrParse},
		{"not json", ReportContract, "Sure! Here is your analysis.", ErrParse},
		{"truncated", ReportContract, `{"summary": "x", "predictions": [`, ErrParse},
		{"array root", TipsContract, `["a", "b"]`, ErrParse},
		{"null root", ReportContract, `null`, ErrParse},
		{"trailing data", TipsContract, `{"tips": []} {"tips": []}`, ErrParse},
		{"missing score", ReportContract, `{"summary":"x","predictions":[],"recommendations":[]}`, ErrValidation},
		{"null summary", ReportContract, `{"summary":null,"predictions":[],"healthScore":5,"recommendations":[]}`, ErrValidation},
		{"fractional score", ReportContract, `{"summary":"x","predictions":[],"healthScore":72.5,"recommendations":[]}`, ErrValidation},
		{"whole float score", ReportContract, `{"summary":"s","predictions":[],"healthScore":85.0,"recommendations":[]}`, ErrValidation},
		{"score out of range", ReportContract, `{"summary":"s","predictions":[],"healthScore":1e30,"recommendations":[]}`, ErrValidation},
		{"score as string", ReportContract, `{"summary":"x","predictions":[],"healthScore":"80","recommendations":[]}`, ErrValidation},
		{"prediction without probability", ReportContract,
			`{"summary":"x","predictions":[{"disease":"flu"}],"healthScore":5,"recommendations":[]}`, ErrValidation},
		{"missing predictions", SymptomsContract, `{"result": []}`, ErrValidation},
		{"specialist missing", SymptomsContract,
			`{"predictions":[{"disease":"flu","probability":40,"description":"viral"}]}`, ErrValidation},
		{"tip not a string", TipsContract, `{"tips": ["walk", 3]}`, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := map[string]any{"untouched": true}
			err := Validate(tt.contract, tt.raw, &out)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, map[string]any{"untouched": true}, out)
		})
	}
}

func TestValidate_NumbersDecodeAfterPassing(t *testing.T) {
	var out ReportAnalysis
	raw := `{"summary":"s","predictions":[{"disease":"flu","probability":1e2}],"healthScore":-3,"recommendations":[]}`
	require.NoError(t, Validate(ReportContract, raw, &out))
	assert.Equal(t, -3, out.HealthScore)
	assert.InDelta(t, 100.0, out.Predictions[0].Probability, 1e-9)
}

func TestValidate_StripsCodeFences(t *testing.T) {
	var out Tips
	require.NoError(t, Validate(TipsContract, "```json\n{\"tips\": [\"Drink water\"]}\n```", &out))
	assert.Equal(t, []string{"Drink water"}, out.Tips)
}

func TestValidate_EmptyListIsPresent(t *testing.T) {
	var out SymptomPrediction
	require.NoError(t, Validate(SymptomsContract, `{"predictions": []}`, &out))
	assert.Empty(t, out.Predictions)
}

func TestValidate_Deterministic(t *testing.T) {
	inputs := []string{validReport, `{"summary":"x"}`, "nope"}
	for _, raw := range inputs {
		var a, b ReportAnalysis
		errA := Validate(ReportContract, raw, &a)
		errB := Validate(ReportContract, raw, &b)
		assert.Equal(t, errA == nil, errB == nil, raw)
		assert.Equal(t, a, b)
	}
}

func TestContract_Required(t *testing.T) {
	assert.Equal(t, []string{"summary", "predictions", "healthScore", "recommendations"}, ReportContract.Required())
	assert.Equal(t, []string{"tips"}, TipsContract.Required())
}
