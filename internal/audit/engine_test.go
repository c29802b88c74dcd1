package audit

import (
	"maps"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devtriage/internal/domain"
)

func TestAuditBuiltinRules(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.Settings
		want     []domain.Suspicion
	}{
		{
			name:     "verifier disabled",
			settings: domain.Settings{"package_verifier_enable": "0"},
			want: []domain.Suspicion{
				{Level: domain.SuspicionHigh, Description: "Google Play Protect is turned off"},
			},
		},
		{
			name:     "verifier enabled",
			settings: domain.Settings{"package_verifier_enable": "1"},
			want:     []domain.Suspicion{},
		},
		{
			name:     "user consent granted",
			settings: domain.Settings{"package_verifier_user_consent": "1"},
			want: []domain.Suspicion{
				{Level: domain.SuspicionGood, Description: "Scanning apps with Google Play Protect is enabled"},
			},
		},
		{
			name:     "user consent revoked",
			settings: domain.Settings{"package_verifier_user_consent": "0"},
			want: []domain.Suspicion{
				{Level: domain.SuspicionHigh, Description: "Scanning apps with Google Play Protect is disabled"},
			},
		},
		{
			name:     "user consent unexpected value",
			settings: domain.Settings{"package_verifier_user_consent": "-1"},
			want: []domain.Suspicion{
				{Level: domain.SuspicionHigh, Description: "Scanning apps with Google Play Protect is disabled"},
			},
		},
		{
			name:     "apk upload disabled",
			settings: domain.Settings{"upload_apk_enable": "0"},
			want: []domain.Suspicion{
				{Level: domain.SuspicionHigh, Description: "Automatic upload of suspicious apps to Google Play has been disabled"},
			},
		},
		{
			name:     "apk upload enabled",
			settings: domain.Settings{"upload_apk_enable": "1"},
			want:     []domain.Suspicion{},
		},
		{
			name:     "unknown key",
			settings: domain.Settings{"unknown_key": "1"},
			want:     []domain.Suspicion{},
		},
		{
			name:     "non-numeric value",
			settings: domain.Settings{"package_verifier_enable": "true"},
			want: []domain.Suspicion{
				{Level: domain.SuspicionHigh, Description: "Google Play Protect is turned off"},
			},
		},
		{
			name:     "empty settings",
			settings: domain.Settings{},
			want:     []domain.Suspicion{},
		},
		{
			name:     "nil settings",
			settings: nil,
			want:     []domain.Suspicion{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Audit(tt.settings))
		})
	}
}

func TestAuditDeterministic(t *testing.T) {
	settings := domain.Settings{
		"upload_apk_enable":             "0",
		"package_verifier_enable":       "0",
		"package_verifier_user_consent": "1",
		"adb_enabled":                   "1",
	}

	first := Audit(settings)
	require.Len(t, first, 3)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Audit(maps.Clone(settings)))
	}

	// Key order
	assert.Equal(t, "Google Play Protect is turned off", first[0].Description)
	assert.Equal(t, domain.SuspicionGood, first[1].Level)
	assert.Equal(t, "Automatic upload of suspicious apps to Google Play has been disabled", first[2].Description)
}

func TestAuditUnionOfDisjointMappings(t *testing.T) {
	a := domain.Settings{"package_verifier_enable": "0"}
	b := domain.Settings{"package_verifier_user_consent": "1"}
	union := domain.Settings{"package_verifier_enable": "0", "package_verifier_user_consent": "1"}

	separate := append(Audit(a), Audit(b)...)
	assert.ElementsMatch(t, separate, Audit(union))
}

func TestAuditSnapshot(t *testing.T) {
	snapshot := domain.Snapshot{
		domain.NamespaceSystem: {"screen_off_timeout": "60000"},
		domain.NamespaceSecure: {"package_verifier_user_consent": "0"},
		domain.NamespaceGlobal: {"package_verifier_enable": "0", "upload_apk_enable": "1"},
	}

	findings := Default().AuditSnapshot(snapshot)
	require.Len(t, findings, 2)

	assert.Equal(t, domain.NamespaceSecure, findings[0].Namespace)
	assert.Equal(t, "package_verifier_user_consent", findings[0].Key)
	assert.Equal(t, "0", findings[0].Value)
	assert.Equal(t, domain.SuspicionHigh, findings[0].Level)

	assert.Equal(t, domain.NamespaceGlobal, findings[1].Namespace)
	assert.Equal(t, "package_verifier_enable", findings[1].Key)
}

func TestAuditNamespace(t *testing.T) {
	settings := domain.Settings{
		"upload_apk_enable":             "0",
		"package_verifier_user_consent": "1",
		"unrelated":                     "x",
	}
	e := Default()

	findings := e.AuditNamespace(domain.NamespaceGlobal, settings)
	require.Len(t, findings, 2)
	for _, f := range findings {
		assert.Equal(t, domain.NamespaceGlobal, f.Namespace)
	}
	assert.Equal(t, "package_verifier_user_consent", findings[0].Key)
	assert.Equal(t, domain.SuspicionGood, findings[0].Level)
	assert.Equal(t, "upload_apk_enable", findings[1].Key)
	assert.Equal(t, "0", findings[1].Value)

	// same suspicions as Audit, in the same order
	suspicions := e.Audit(settings)
	require.Len(t, suspicions, len(findings))
	for i := range findings {
		assert.Equal(t, suspicions[i], findings[i].Suspicion)
	}

	assert.Empty(t, e.AuditNamespace(domain.NamespaceSystem, domain.Settings{}))
}

func TestEngineCustomRules(t *testing.T) {
	rules := append(DefaultRules(),
		Rule{Key: "adb_enabled", When: NotEquals("0"), Level: domain.SuspicionMedium, Description: "USB debugging is enabled"},
		Rule{Key: "install_non_market_apps", When: Equals("1"), Level: domain.SuspicionLow, Description: "Unknown sources allowed"},
		// Only reached when the built-in rule for the key does not match
		Rule{Key: "package_verifier_enable", When: Always(), Level: domain.SuspicionLow, Description: "Play Protect setting present"},
	)
	e, err := NewEngine(rules)
	require.NoError(t, err)

	got := e.Audit(domain.Settings{
		"adb_enabled":             "1",
		"install_non_market_apps": "0",
		"package_verifier_enable": "0",
	})
	assert.Equal(t, []domain.Suspicion{
		{Level: domain.SuspicionMedium, Description: "USB debugging is enabled"},
		{Level: domain.SuspicionHigh, Description: "Google Play Protect is turned off"},
	}, got)

	// A value the built-in rule accepts falls through to the next rule
	got = e.Audit(domain.Settings{"package_verifier_enable": "1"})
	assert.Equal(t, []domain.Suspicion{{Level: domain.SuspicionLow, Description: "Play Protect setting present"}}, got)
}

func TestEngineSetRulesKeepsPreviousOnError(t *testing.T) {
	e := Default()
	before := e.Rules()

	err := e.SetRules([]Rule{{Key: "x", When: Equals("1"), Description: "no level"}})
	require.Error(t, err)
	assert.Equal(t, before, e.Rules())
	assert.Len(t, e.Audit(domain.Settings{"package_verifier_enable": "0"}), 1)
}

func TestEngineRulesReturnsCopy(t *testing.T) {
	e := Default()
	rules := e.Rules()
	rules[0].Description = "tampered"
	assert.Equal(t, "Google Play Protect is turned off", e.Rules()[0].Description)
}

func TestEngineConcurrentUse(t *testing.T) {
	e := Default()
	settings := domain.Settings{"package_verifier_enable": "0", "package_verifier_user_consent": "1"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%4 == 0 {
				_ = e.SetRules(DefaultRules())
			}
			assert.Len(t, e.Audit(settings), 2)
		}(i)
	}
	wg.Wait()
}

func TestConditionMatch(t *testing.T) {
	tests := []struct {
		cond  Condition
		value string
		want  bool
	}{
		{Equals("1"), "1", true},
		{Equals("1"), "0", false},
		{NotEquals("1"), "0", true},
		{NotEquals("1"), "1", false},
		{NotEquals("1"), "", true},
		{Always(), "", true},
		{Condition{Op: "regex", Value: ".*"}, "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.cond.String()+"/"+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.Match(tt.value))
		})
	}
}

func TestRuleValidate(t *testing.T) {
	valid := Rule{Key: "k", When: Equals("1"), Level: domain.SuspicionLow, Description: "d"}
	assert.NoError(t, valid.Validate())

	noKey := valid
	noKey.Key = ""
	assert.ErrorContains(t, noKey.Validate(), "without key")

	badOp := valid
	badOp.When = Condition{Op: "regex"}
	assert.ErrorContains(t, badOp.Validate(), "unknown condition")

	noDesc := valid
	noDesc.Description = ""
	assert.ErrorContains(t, noDesc.Validate(), "empty description")
}
