package ml

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture order: Type_L, Type_M, Product_ID, Air, Process, RPM, Torque, Wear, TWF, HDF, PWF, OSF, RNF
func fixtureRecord(torque, hdf float64) Record {
	return Record{
		Names: []string{"Type_L", "Type_M", "Product_ID", "Air_temperature_K", "Process_temperature_K",
			"Rotational_speed_rpm", "Torque_Nm", "Tool_wear_min", "TWF", "HDF", "PWF", "OSF", "RNF"},
		Values: []float64{0, 0, 7003, 300, 310, 1500, torque, 100, 0, hdf, 0, 0, 0},
	}
}

func loadFixture(t *testing.T) *Booster {
	t.Helper()
	b, err := LoadBooster("testdata/xgb_model.json")
	require.NoError(t, err)
	return b
}

func TestBoosterFeatureNames(t *testing.T) {
	b := loadFixture(t)
	names := b.FeatureNames()
	require.Len(t, names, 13)
	assert.Equal(t, "Type_L", names[0])
	assert.Equal(t, "HDF", names[9])
}

func TestBoosterPredict(t *testing.T) {
	b := loadFixture(t)

	cases := []struct {
		name   string
		torque float64
		hdf    float64
		margin float64
		want   Label
	}{
		{"healthy", 40, 0, -0.6, NoFailure},
		{"heat dissipation", 40, 1, 0.4, Failure},
		{"high torque only", 70, 0, -0.1, NoFailure},
		{"both", 70, 1, 0.9, Failure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := fixtureRecord(tc.torque, tc.hdf)
			assert.InDelta(t, tc.margin, b.Margin(record.Values), 1e-6)
			label, err := b.Predict(record)
			require.NoError(t, err)
			assert.Equal(t, tc.want, label)
		})
	}
}

func TestBoosterSplitIsStrictlyLess(t *testing.T) {
	b := loadFixture(t)
	// torque == split condition goes right
	assert.InDelta(t, -0.4+0.3, b.Margin(fixtureRecord(60, 0).Values), 1e-6)
}

func TestBoosterRejectsMisorderedRecord(t *testing.T) {
	b := loadFixture(t)
	record := fixtureRecord(40, 0)
	record.Names[0], record.Names[1] = record.Names[1], record.Names[0]

	_, err := b.Predict(record)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestBoosterBestIterationLimitsTrees(t *testing.T) {
	payload, err := os.ReadFile("testdata/xgb_model.json")
	require.NoError(t, err)
	limited := strings.Replace(string(payload), `"attributes": {}`, `"attributes": {"best_iteration": "0"}`, 1)

	b, err := ParseBooster([]byte(limited))
	require.NoError(t, err)
	assert.InDelta(t, -0.4, b.Margin(fixtureRecord(70, 0).Values), 1e-6)
}

func TestBoosterBaseScoreVectorForm(t *testing.T) {
	payload, err := os.ReadFile("testdata/xgb_model.json")
	require.NoError(t, err)
	vector := strings.Replace(string(payload), `"base_score": "5E-1"`, `"base_score": "[7.5E-1]"`, 1)

	b, err := ParseBooster([]byte(vector))
	require.NoError(t, err)
	// logit(0.75) = ln 3
	assert.InDelta(t, 1.0986123-0.6, b.Margin(fixtureRecord(40, 0).Values), 1e-6)
}

func TestParseBoosterErrors(t *testing.T) {
	payload, err := os.ReadFile("testdata/xgb_model.json")
	require.NoError(t, err)
	base := string(payload)

	cases := map[string]string{
		"objective":   strings.Replace(base, "binary:logistic", "reg:squarederror", 1),
		"booster":     strings.Replace(base, `"name": "gbtree"`, `"name": "gblinear"`, 1),
		"multiclass":  strings.Replace(base, `"num_class": "0"`, `"num_class": "3"`, 1),
		"bad feature": strings.Replace(base, `"split_indices": [9, 0, 0]`, `"split_indices": [42, 0, 0]`, 1),
		"categorical": strings.Replace(base, `"split_type": [0, 0, 0]`, `"split_type": [1, 0, 0]`, 1),
		"not json":    "{",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseBooster([]byte(doc))
			assert.Error(t, err)
		})
	}
}
