package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devtriage/internal/domain"
)

func sampleReport() *Report {
	snapshot := domain.Snapshot{
		domain.NamespaceSystem: {"screen_off_timeout": "60000"},
		domain.NamespaceSecure: {"package_verifier_user_consent": "1"},
		domain.NamespaceGlobal: {"package_verifier_enable": "0", "upload_apk_enable": "0"},
	}
	findings := []domain.Finding{
		{Namespace: domain.NamespaceSecure, Key: "package_verifier_user_consent", Value: "1",
			Suspicion: domain.Suspicion{Level: domain.SuspicionGood, Description: "Scanning apps with Google Play Protect is enabled"}},
		{Namespace: domain.NamespaceGlobal, Key: "package_verifier_enable", Value: "0",
			Suspicion: domain.Suspicion{Level: domain.SuspicionHigh, Description: "Google Play Protect is turned off"}},
		{Namespace: domain.NamespaceGlobal, Key: "adb_enabled", Value: "1",
			Suspicion: domain.Suspicion{Level: domain.SuspicionMedium, Description: "USB debugging is enabled"}},
		{Namespace: domain.NamespaceGlobal, Key: "upload_apk_enable", Value: "0",
			Suspicion: domain.Suspicion{Level: domain.SuspicionHigh, Description: "Automatic upload of suspicious apps to Google Play has been disabled"}},
	}
	r := New("lab-phone", snapshot, findings)
	r.CollectedAt = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	return r
}

func TestNew(t *testing.T) {
	r := New("phone", domain.NewSnapshot(), nil)
	_, err := uuid.Parse(r.ID)
	assert.NoError(t, err)
	assert.NotNil(t, r.Findings)
	assert.False(t, r.CollectedAt.IsZero())
	assert.NotEqual(t, r.ID, New("phone", nil, nil).ID)
}

func TestSummaryAndHighest(t *testing.T) {
	r := sampleReport()

	assert.Equal(t, map[domain.SuspicionLevel]int{
		domain.SuspicionGood:   1,
		domain.SuspicionMedium: 1,
		domain.SuspicionHigh:   2,
	}, r.Summary())

	highest, ok := r.Highest()
	assert.True(t, ok)
	assert.Equal(t, domain.SuspicionHigh, highest)

	_, ok = New("x", nil, nil).Highest()
	assert.False(t, ok)
}

func TestPrioritized(t *testing.T) {
	r := sampleReport()
	got := r.Prioritized()

	keys := make([]string, len(got))
	for i, f := range got {
		keys[i] = f.Key
	}
	assert.Equal(t, []string{
		"package_verifier_enable",
		"upload_apk_enable",
		"adb_enabled",
		"package_verifier_user_consent",
	}, keys)

	// The report itself keeps audit order
	assert.Equal(t, "package_verifier_user_consent", r.Findings[0].Key)
}

func TestExceeds(t *testing.T) {
	r := sampleReport()
	assert.True(t, r.Exceeds(domain.SuspicionHigh))
	assert.True(t, r.Exceeds(domain.SuspicionGood))

	onlyGood := New("x", nil, r.Findings[:1])
	assert.False(t, onlyGood.Exceeds(domain.SuspicionLow))
}

func TestTextExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextCodec().Export(sampleReport(), &buf))
	out := buf.String()

	assert.Contains(t, out, "Target:    lab-phone")
	assert.Contains(t, out, "Collected: 2026-10-15 09:30:00 UTC")
	assert.Contains(t, out, "global  2 settings")
	assert.Contains(t, out, "Findings: 1 good, 1 medium, 2 high")

	highIdx := strings.Index(out, "HIGH")
	goodIdx := strings.Index(out, "GOOD")
	require.True(t, highIdx > 0 && goodIdx > 0)
	assert.Less(t, highIdx, goodIdx)
	assert.Contains(t, out, "package_verifier_enable=0")
}

func TestTextExportNoFindings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextCodec().Export(New("x", domain.NewSnapshot(), nil), &buf))
	assert.Contains(t, buf.String(), "No findings.")
}

func TestRoundTrip(t *testing.T) {
	for _, codec := range []interface {
		Importer
		Exporter
	}{NewJSONCodec(), NewYAMLCodec()} {
		t.Run(codec.Format(), func(t *testing.T) {
			want := sampleReport()

			var buf bytes.Buffer
			require.NoError(t, codec.Export(want, &buf))

			got, err := codec.Parse(&buf)
			require.NoError(t, err)
			assert.Equal(t, want.ID, got.ID)
			assert.True(t, want.CollectedAt.Equal(got.CollectedAt))
			assert.Equal(t, want.Snapshot, got.Snapshot)
			assert.Equal(t, want.Findings, got.Findings)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := NewJSONCodec().Parse(strings.NewReader("{"))
	assert.ErrorContains(t, err, "failed to parse JSON")

	_, err = NewYAMLCodec().Parse(strings.NewReader("findings: [{level: severe}]"))
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestCodecLookup(t *testing.T) {
	for format, want := range map[string]string{"": "text", "text": "text", "json": "json", "yaml": "yaml", "yml": "yaml"} {
		e, err := ExporterFor(format)
		require.NoError(t, err)
		assert.Equal(t, want, e.Format())
	}
	_, err := ExporterFor("xml")
	assert.Error(t, err)

	i, err := ImporterFor("/tmp/report.JSON")
	require.NoError(t, err)
	assert.Equal(t, "json", i.Format())
	i, err = ImporterFor("snap.yml")
	require.NoError(t, err)
	assert.Equal(t, "yaml", i.Format())
	_, err = ImporterFor("snap.txt")
	assert.Error(t, err)
}

func TestParseSnapshot(t *testing.T) {
	for _, codec := range []interface {
		Importer
		Exporter
	}{NewJSONCodec(), NewYAMLCodec()} {
		t.Run(codec.Format()+" report", func(t *testing.T) {
			want := sampleReport()
			var buf bytes.Buffer
			require.NoError(t, codec.Export(want, &buf))

			target, snapshot, err := codec.ParseSnapshot(&buf)
			require.NoError(t, err)
			assert.Equal(t, want.Target, target)
			assert.Equal(t, want.Snapshot, snapshot)
		})
	}

	t.Run("json bare snapshot", func(t *testing.T) {
		doc := `{"system":{},"secure":{"package_verifier_user_consent":"1"},"global":{"package_verifier_enable":"0"}}`
		target, snapshot, err := NewJSONCodec().ParseSnapshot(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Empty(t, target)
		assert.Equal(t, "0", snapshot[domain.NamespaceGlobal]["package_verifier_enable"])
	})

	t.Run("yaml bare snapshot", func(t *testing.T) {
		doc := "system: {}\nsecure:\n  package_verifier_user_consent: \"1\"\nglobal: {}\n"
		_, snapshot, err := NewYAMLCodec().ParseSnapshot(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Equal(t, "1", snapshot[domain.NamespaceSecure]["package_verifier_user_consent"])
	})

	t.Run("missing namespace", func(t *testing.T) {
		_, _, err := NewJSONCodec().ParseSnapshot(strings.NewReader(`{"system":{"a":"1"}}`))
		assert.ErrorContains(t, err, "missing namespace")
	})

	t.Run("not a snapshot", func(t *testing.T) {
		_, _, err := NewJSONCodec().ParseSnapshot(strings.NewReader(`[1,2]`))
		assert.Error(t, err)
	})
}
