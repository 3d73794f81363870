package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer(DefaultNoiseTokens)

	tests := []struct {
		name     string
		fileName string
		want     string
		ok       bool
	}{
		{"noise token with year", "NAIROBI_DCP_2024", "NAIROBI", true},
		{"extension dropped", "NAIROBI_DCP_2024.txt", "NAIROBI", true},
		{"lowercase input", "mansa_aws_table1.dat", "MANSA", true},
		{"multi word station", "KASAMA_MET_03.csv", "KASAMA MET", true},
		{"first token wins", "CHIPATA_LOG_MQTT_7.log", "CHIPATA", true},
		{"token inside word cuts", "CATALOGUE_1.txt", "CATA", true},
		{"serial after letter", "LUSAKA12.txt", "LUSAKA", true},
		{"serial after space", "MONGU 0042.txt", "MONGU", true},
		{"inner digits after letter", "ST3ATION.txt", "STATION", true},
		{"leading digits kept", "123ABC.txt", "123ABC", true},
		{"digits after dash kept", "KABWE-2.txt", "KABWE-2", true},
		{"everything after first dot", "NDOLA.backup.txt", "NDOLA", true},
		{"directory prefix ignored", "uploads/2024/SOLWEZI_SYNOP.txt", "SOLWEZI", true},
		{"windows directory prefix", `C:\data\KITWE_SOLAR.csv`, "KITWE", true},
		{"only noise", "DCP_2024.txt", "", false},
		{"too short", "A_LOG.txt", "", false},
		{"empty", "", "", false},
		{"underscores only", "___.txt", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := n.Normalize(tc.fileName)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizer_CustomTokens(t *testing.T) {
	n := NewNormalizer([]string{"wind", " io$pak ", ""})

	got, ok := n.Normalize("PETAUKE_WIND_SPEED.txt")
	assert.True(t, ok)
	assert.Equal(t, "PETAUKE", got)

	got, ok = n.Normalize("ISOKA_IO$PAK.txt")
	assert.True(t, ok)
	assert.Equal(t, "ISOKA", got, "tokens are matched literally")

	got, ok = n.Normalize("NAIROBI_DCP.txt")
	assert.True(t, ok)
	assert.Equal(t, "NAIROBI DCP", got, "default tokens are replaced, not merged")
}

func TestNormalizer_EmptyTokensFallBackToDefaults(t *testing.T) {
	n := NewNormalizer(nil)
	got, ok := n.Normalize("NAIROBI_DCP_2024")
	assert.True(t, ok)
	assert.Equal(t, "NAIROBI", got)
}

func TestStripSerialDigits(t *testing.T) {
	tests := map[string]string{
		"ABC123":   "ABC",
		"A1B2C3":   "ABC",
		"12AB":     "12AB",
		"AB_12_34": "AB__",
		"AB 7":     "AB ",
		"AB-7":     "AB-7",
		"":         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, stripSerialDigits(in), "input %q", in)
	}
}
