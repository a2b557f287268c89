package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/askwhyharsh/scamcheck/pkg/errors"
	"github.com/askwhyharsh/scamcheck/pkg/logger"
)

func TestDefaultRulesLoad(t *testing.T) {
	set, err := Default(logger.NewNop())
	require.NoError(t, err)

	assert.NotEmpty(t, set.TextRules())
	assert.NotEmpty(t, set.URLRules())
	assert.Equal(t, DefaultSeverities, set.Severities())

	for _, r := range set.URLRules() {
		assert.True(t, r.compiled != nil, "rule %s should be compiled", r.ID)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	set, err := Default(logger.NewNop())
	require.NoError(t, err)

	text := set.TextRules()
	id := text[0].ID
	pattern := text[0].PatternsFor(LocaleEnglish)[0]
	text[0].ID = "changed"
	text[0].Tags = append(text[0].Tags[:0], "changed")
	text[0].Patterns[LocaleEnglish][0] = "changed"
	text[0].Patterns["xx"] = []string{"changed"}

	fresh := set.TextRules()[0]
	assert.Equal(t, id, fresh.ID)
	assert.NotContains(t, fresh.Tags, "changed")
	assert.Equal(t, pattern, fresh.PatternsFor(LocaleEnglish)[0])
	assert.NotContains(t, fresh.Patterns, "xx")

	urls := set.URLRules()
	urls[0].Tags = append(urls[0].Tags[:0], "changed")
	assert.NotContains(t, set.URLRules()[0].Tags, "changed")

	for name, get := range map[string]func() []string{
		"homographs":      set.Homographs,
		"brands":          set.Brands,
		"sensitive paths": set.SensitivePaths,
	} {
		got := get()
		require.NotEmpty(t, got, name)
		want := got[0]
		got[0] = "changed"
		assert.Equal(t, want, get()[0], name)
	}
}

func TestLocales(t *testing.T) {
	set, err := Default(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{"de", "en", "tr"}, set.Locales())
}

func TestLoadRejectsMalformedDocument(t *testing.T) {
	_, err := Load([]byte(`{"text_rules": [`), logger.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidRuleDocument))
}

func TestLoadSkipsBadRules(t *testing.T) {
	doc := `{
		"text_rules": [
			{"id": "", "severity": 5, "patterns": {"en": ["x"]}},
			{"id": "ok", "severity": 5, "tags": ["A"], "patterns": {"en": ["  Hello  "]}},
			{"id": "ok", "severity": 7, "patterns": {"en": ["dup"]}},
			{"id": "negative", "severity": -1, "patterns": {"en": ["x"]}},
			{"id": "empty", "severity": 5, "patterns": {"en": ["   "]}}
		],
		"url_rules": [
			{"id": "broken", "severity": 10, "regex": "([a-z"},
			{"id": "blank", "severity": 10, "regex": ""},
			{"id": "good", "severity": 10, "regex": "evil"}
		]
	}`

	set, err := Load([]byte(doc), logger.NewNop())
	require.NoError(t, err)

	require.Len(t, set.TextRules(), 1)
	assert.Equal(t, "ok", set.TextRules()[0].ID)
	assert.Equal(t, []string{"hello"}, set.TextRules()[0].Patterns["en"])
	assert.Equal(t, []string{"a"}, set.TextRules()[0].Tags)

	require.Len(t, set.URLRules(), 1)
	assert.Equal(t, "good", set.URLRules()[0].ID)
	assert.True(t, set.URLRules()[0].Match("http://EVIL.example"), "url rules are case-insensitive")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"blocklist": ["bad.test"], "severities": {"blocklist": 90}}`), 0o600))

	set, err := LoadFile(path, nil)
	require.NoError(t, err)
	assert.True(t, set.Reputation().Blocked("bad.test"))
	assert.Equal(t, 90, set.Severities().Blocklist)
	assert.Equal(t, DefaultSeverities.Punycode, set.Severities().Punycode)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, err)
}

func TestPatternsForFallsBackToDefaultLocale(t *testing.T) {
	r := TextRule{ID: "r", Patterns: map[string][]string{"en": {"a"}, "tr": {"b"}}}
	assert.Equal(t, []string{"b"}, r.PatternsFor("tr"))
	assert.Equal(t, []string{"a"}, r.PatternsFor("de"))

	none := TextRule{ID: "n", Patterns: map[string][]string{"tr": {"b"}}}
	assert.Nil(t, none.PatternsFor("de"))
}

func TestResolveLocale(t *testing.T) {
	set, err := Default(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "tr", set.ResolveLocale("tr"))
	assert.Equal(t, "de", set.ResolveLocale("de"))
	assert.Equal(t, "en", set.ResolveLocale("fr"))
	assert.Equal(t, "en", set.ResolveLocale(""))
	assert.Equal(t, "de", set.ResolveLocale("de-AT"))
	assert.Equal(t, "tr", set.ResolveLocale("TR"))
}

func TestReputation(t *testing.T) {
	rep := NewReputation([]string{"Google.com", " google.com "}, []string{"bad.example"})

	assert.True(t, rep.Allowed("google.com"))
	assert.True(t, rep.Allowed("sub.google.com"))
	assert.True(t, rep.Allowed("google.com."))
	assert.False(t, rep.Allowed("evilgoogle.com"))
	assert.False(t, rep.Allowed(""))

	assert.True(t, rep.Blocked("login.bad.example"))
	assert.False(t, rep.Blocked("google.com"))
}

func TestShortenerFirstMatchWins(t *testing.T) {
	s := NewShortener([]ShortLink{
		{Fragment: "bit.ly/scam", Expanded: "http://first.test"},
		{Fragment: "bit.ly/scam1", Expanded: "http://second.test"},
		{Fragment: "", Expanded: "http://ignored.test"},
	})

	got, ok := s.Expand("http://bit.ly/scam1")
	assert.True(t, ok)
	assert.Equal(t, "http://first.test", got)

	got, ok = s.Expand("https://example.com")
	assert.False(t, ok)
	assert.Equal(t, "https://example.com", got)
	assert.Equal(t, 2, s.Len())
}

func TestAgeTable(t *testing.T) {
	ages := NewAgeTable(map[string]int{"example.com": 10, "Exact.Example.org": 3, "bad.test": -5})

	d, ok := ages.Lookup("example.com")
	assert.True(t, ok)
	assert.Equal(t, 10, d)

	d, ok = ages.Lookup("login.example.com")
	assert.True(t, ok, "falls back to registrable root")
	assert.Equal(t, 10, d)

	d, ok = ages.Lookup("exact.example.org")
	assert.True(t, ok)
	assert.Equal(t, 3, d)

	_, ok = ages.Lookup("bad.test")
	assert.False(t, ok)

	_, ok = ages.Resolve("unknown.test", AgePolicyUnknown)
	assert.False(t, ok)

	d1, ok := ages.Resolve("unknown.test", AgePolicySimulated)
	assert.True(t, ok)
	d2, _ := ages.Resolve("unknown.test", AgePolicySimulated)
	assert.Equal(t, d1, d2)
	assert.GreaterOrEqual(t, d1, 0)
	assert.Less(t, d1, simulatedAgeSpan)
}

func TestParseAgePolicy(t *testing.T) {
	assert.Equal(t, AgePolicySimulated, ParseAgePolicy(" Simulated "))
	assert.Equal(t, AgePolicyUnknown, ParseAgePolicy("unknown"))
	assert.Equal(t, AgePolicyUnknown, ParseAgePolicy("whatever"))
}

func TestLoginPattern(t *testing.T) {
	set, err := Load([]byte(`{"login_pattern": "(["}`), logger.NewNop())
	require.NoError(t, err)
	assert.True(t, set.MatchLoginKeyword("http://x.test/LOGIN"), "invalid pattern falls back to the default")

	set, err = Load([]byte(`{}`), logger.NewNop())
	require.NoError(t, err)
	assert.True(t, set.MatchLoginKeyword("http://x.test/secure"))
	assert.False(t, set.MatchLoginKeyword("http://x.test/about"))
}
