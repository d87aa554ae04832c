package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/recupera/backend/src/models"
)

func TestLoadCatalog(t *testing.T) {
	rs, err := Load("testdata/catalog.toml")
	require.NoError(t, err)

	assert.Equal(t, "teste.1", rs.Version)
	assert.Len(t, rs.Rules, 3)

	active := rs.ActiveRules()
	require.Len(t, active, 2)
	for _, r := range active {
		assert.True(t, r.Active)
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := Load("testdata/nao-existe.toml")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Rule{Code: "R1", TaxType: models.TaxPIS, Treatment: models.TreatmentMonofasico,
		Match: MatchCST, Values: []string{"04"}, Active: true}

	tests := []struct {
		name    string
		rs      RuleSet
		wantErr string
	}{
		{
			name:    "missing version",
			rs:      RuleSet{Rules: []Rule{valid}},
			wantErr: "version",
		},
		{
			name:    "duplicate code",
			rs:      RuleSet{Version: "v", Rules: []Rule{valid, valid}},
			wantErr: "duplicate",
		},
		{
			name: "unknown match kind",
			rs: RuleSet{Version: "v", Rules: []Rule{
				{Code: "R2", Match: MatchKind("regex"), Values: []string{"x"}},
			}},
			wantErr: "match kind",
		},
		{
			name: "no values",
			rs: RuleSet{Version: "v", Rules: []Rule{
				{Code: "R3", Match: MatchCST},
			}},
			wantErr: "no match values",
		},
		{
			name: "situation code outside the known table",
			rs: RuleSet{Version: "v", Rules: []Rule{
				{Code: "R4", TaxType: models.TaxPIS, Treatment: models.TreatmentMonofasico,
					Match: MatchCST, Values: []string{"99"}},
			}},
			wantErr: "known",
		},
		{
			name: "operation code outside the known table",
			rs: RuleSet{Version: "v", Rules: []Rule{
				{Code: "R5", TaxType: models.TaxICMS, Treatment: models.TreatmentSubstituicao,
					Match: MatchCFOP, Values: []string{"5102"}},
			}},
			wantErr: "known",
		},
		{
			name: "exclusion without reason",
			rs: RuleSet{Version: "v", Rules: []Rule{valid},
				Exclusions: []Exclusion{{RuleCode: "R1", Regime: models.RegimeSimples}}},
			wantErr: "reason",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rs.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestExclusionFor(t *testing.T) {
	rs, err := Load("testdata/catalog.toml")
	require.NoError(t, err)

	excl, found := rs.ExclusionFor("PIS-MONO-CST", models.RegimeLucroReal)
	require.True(t, found)
	assert.NotEmpty(t, excl.Reason)

	_, found = rs.ExclusionFor("PIS-MONO-CST", models.RegimeSimples)
	assert.False(t, found)
}

func TestNormalizeCodes(t *testing.T) {
	assert.Equal(t, "30049069", NormalizeCode("3004.90.69"))
	assert.Equal(t, "12345678000199", NormalizeCode("12.345.678/0001-99"))
	assert.Equal(t, "04", NormalizeCST("4"))
	assert.Equal(t, "60", NormalizeCST("60"))
	assert.Equal(t, "", NormalizeCode("abc"))
}

func TestMonofasicoGroup(t *testing.T) {
	group, ok := MonofasicoGroup("3004.90.69")
	require.True(t, ok)
	assert.Equal(t, "Medicamentos", group.Name)

	group, ok = MonofasicoGroup("22021000")
	require.True(t, ok)
	assert.Equal(t, "Refrigerantes e isotônicos", group.Name)

	_, ok = MonofasicoGroup("9999")
	assert.False(t, ok)
}
