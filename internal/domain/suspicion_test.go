package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSuspicionLevelOrdering(t *testing.T) {
	assert.True(t, SuspicionGood < SuspicionLow)
	assert.True(t, SuspicionLow < SuspicionMedium)
	assert.True(t, SuspicionMedium < SuspicionHigh)

	assert.False(t, SuspicionGood.IsRisk())
	assert.True(t, SuspicionLow.IsRisk())
	assert.True(t, SuspicionHigh.AtLeast(SuspicionMedium))
	assert.False(t, SuspicionLow.AtLeast(SuspicionMedium))
}

func TestParseSuspicionLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    SuspicionLevel
		wantErr bool
	}{
		{"good", SuspicionGood, false},
		{"LOW", SuspicionLow, false},
		{" medium ", SuspicionMedium, false},
		{"High", SuspicionHigh, false},
		{"critical", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSuspicionLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuspicionLevelString(t *testing.T) {
	assert.Equal(t, "high", SuspicionHigh.String())
	assert.Equal(t, "level(42)", SuspicionLevel(42).String())
	assert.False(t, SuspicionLevel(0).Valid())
}

func TestFindingEncoding(t *testing.T) {
	f := Finding{
		Namespace: NamespaceSecure,
		Key:       "package_verifier_user_consent",
		Value:     "1",
		Suspicion: Suspicion{Level: SuspicionGood, Description: "enabled"},
	}

	t.Run("json flattens suspicion", func(t *testing.T) {
		data, err := json.Marshal(f)
		require.NoError(t, err)
		assert.JSONEq(t, `{"namespace":"secure","key":"package_verifier_user_consent","value":"1","level":"good","description":"enabled"}`, string(data))

		var back Finding
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, f, back)
	})

	t.Run("yaml inlines suspicion", func(t *testing.T) {
		data, err := yaml.Marshal(f)
		require.NoError(t, err)
		assert.Contains(t, string(data), "level: good")

		var back Finding
		require.NoError(t, yaml.Unmarshal(data, &back))
		assert.Equal(t, f, back)
	})

	t.Run("invalid level rejected", func(t *testing.T) {
		var s Suspicion
		assert.Error(t, json.Unmarshal([]byte(`{"level":"severe"}`), &s))
	})
}
