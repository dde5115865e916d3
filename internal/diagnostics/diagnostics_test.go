package diagnostics

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/webdiag/internal/config"
	"github.com/Iron-Ham/webdiag/internal/errors"
	"github.com/Iron-Ham/webdiag/internal/event"
	"github.com/Iron-Ham/webdiag/internal/filter"
	"github.com/Iron-Ham/webdiag/internal/hostenv"
	"github.com/Iron-Ham/webdiag/internal/logging"
	"github.com/Iron-Ham/webdiag/internal/registry"
)

const customPrefix = "customPrefix"

var azureHost = hostenv.Static{Running: true, Home: "/home"}

func newSource(t *testing.T, yaml string) *config.Source {
	t.Helper()
	v := config.NewViper()
	config.SetDefaults(v)
	if yaml != "" {
		v.SetConfigType("yaml")
		if err := v.ReadConfig(strings.NewReader(yaml)); err != nil {
			t.Fatalf("ReadConfig failed: %v", err)
		}
	}
	return config.NewSource(v)
}

func newTestBuilder(t *testing.T, host hostenv.Context, opts ...Option) (*Builder, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	opts = append([]Option{WithFs(fs)}, opts...)
	return NewBuilder(newSource(t, ""), host, opts...), fs
}

// withBaseline adds the configuration every scenario starts from: the
// default level configurator plus one configuration section.
func withBaseline(t *testing.T, b *Builder) {
	t.Helper()
	if err := b.AddConfiguration(b.Config().Section(config.LoggingSection)); err != nil {
		t.Fatalf("AddConfiguration failed: %v", err)
	}
}

type counts struct {
	services      int
	configurators int
	sources       int
	ledger        int
}

func countsOf(b *Builder) counts {
	return counts{
		services:      b.Services().Len(),
		configurators: b.Filters().ConfiguratorCount(),
		sources:       b.Filters().SourceCount(),
		ledger:        b.Ledger().Len(),
	}
}

func mustAttach(t *testing.T, b *Builder, key Key) {
	t.Helper()
	if err := b.Attach(key); err != nil {
		t.Fatalf("Attach(%s) failed: %v", key, err)
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		key      Key
		str      string
		provider string
		section  string
		file     string
	}{
		{
			name:     "default",
			key:      DefaultKey(),
			str:      "<default>",
			provider: "diagnostics",
			section:  "diagnostics",
			file:     "diagnostics.txt",
		},
		{
			name:     "prefix",
			key:      PrefixKey("api"),
			str:      "api",
			provider: "diagnostics:api",
			section:  "diagnostics:prefixes:api",
			file:     "api-diagnostics.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
			if got := tt.key.ProviderName(); got != tt.provider {
				t.Errorf("ProviderName() = %q, want %q", got, tt.provider)
			}
			if got := tt.key.SectionPath(); got != tt.section {
				t.Errorf("SectionPath() = %q, want %q", got, tt.section)
			}
			if got := tt.key.FileName(); got != tt.file {
				t.Errorf("FileName() = %q, want %q", got, tt.file)
			}
		})
	}

	t.Run("equality is by value", func(t *testing.T) {
		if PrefixKey("api") != PrefixKey("api") {
			t.Error("two keys with the same prefix should be equal")
		}
		if DefaultKey() != (Key{}) {
			t.Error("DefaultKey() should be the zero Key")
		}
		if DefaultKey() == PrefixKey("") {
			t.Error("the absent key and the empty prefix should differ")
		}
		if !DefaultKey().IsDefault() || PrefixKey("").IsDefault() {
			t.Error("IsDefault() should only hold for the absent key")
		}
	})
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name string
		host hostenv.Context
		want bool
	}{
		{"nil host", nil, false},
		{"not running", hostenv.Static{Home: "/home"}, false},
		{"running", azureHost, true},
		{"running without home", hostenv.Static{Running: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Eligible(tt.host); got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewBuilder(t *testing.T) {
	b, _ := newTestBuilder(t, azureHost)

	got := countsOf(b)
	want := counts{configurators: 1}
	if got != want {
		t.Errorf("counts = %+v, want %+v", got, want)
	}

	withBaseline(t, b)
	got = countsOf(b)
	want = counts{configurators: 2, sources: 1}
	if got != want {
		t.Errorf("counts after AddConfiguration = %+v, want %+v", got, want)
	}
}

// Attaching the same key twice leaves every count where the first attach
// put it.
func TestAttach_Idempotent(t *testing.T) {
	for _, key := range []Key{DefaultKey(), PrefixKey(customPrefix)} {
		t.Run(key.String(), func(t *testing.T) {
			b, _ := newTestBuilder(t, azureHost)

			mustAttach(t, b, key)
			first := countsOf(b)
			mustAttach(t, b, key)
			second := countsOf(b)

			if first != second {
				t.Errorf("counts after second attach = %+v, want %+v", second, first)
			}
			if first.services != 1 {
				t.Errorf("services = %d, want 1", first.services)
			}
		})
	}
}

func TestAttach_SameKeyFromSeparateCallSites(t *testing.T) {
	b, _ := newTestBuilder(t, azureHost)

	attachFromStartup := func() error { return b.Attach(PrefixKey("api")) }
	attachFromPlugin := func() error { return b.Attach(PrefixKey(strings.ToLower("API"))) }

	if err := attachFromStartup(); err != nil {
		t.Fatal(err)
	}
	first := countsOf(b)
	if err := attachFromPlugin(); err != nil {
		t.Fatal(err)
	}
	if got := countsOf(b); got != first {
		t.Errorf("counts = %+v, want %+v", got, first)
	}
}

// With a baseline of 2 configurators and 1 source, one attach of either key
// makes it 4 and 2.
func TestAttach_OnBaseline(t *testing.T) {
	for _, key := range []Key{DefaultKey(), PrefixKey(customPrefix)} {
		t.Run(key.String(), func(t *testing.T) {
			b, _ := newTestBuilder(t, azureHost)
			withBaseline(t, b)

			mustAttach(t, b, key)
			mustAttach(t, b, key)

			got := countsOf(b)
			want := counts{services: 1, configurators: 4, sources: 2, ledger: 1}
			if got != want {
				t.Errorf("counts = %+v, want %+v", got, want)
			}
		})
	}
}

func TestAttach_DistinctKeysAreAdditive(t *testing.T) {
	b, _ := newTestBuilder(t, azureHost)
	withBaseline(t, b)

	mustAttach(t, b, DefaultKey())
	mustAttach(t, b, PrefixKey(customPrefix))
	mustAttach(t, b, DefaultKey())
	mustAttach(t, b, PrefixKey(customPrefix))

	got := countsOf(b)
	want := counts{services: 2, configurators: 6, sources: 3, ledger: 2}
	if got != want {
		t.Errorf("counts = %+v, want %+v", got, want)
	}
}

// Every new registration adds exactly two configurators and one source.
func TestAttach_PairPerRegistration(t *testing.T) {
	b, _ := newTestBuilder(t, azureHost)
	withBaseline(t, b)

	keys := []Key{DefaultKey(), PrefixKey("a"), PrefixKey("b.c"), PrefixKey("d-e_f")}
	for _, key := range keys {
		before := countsOf(b)
		mustAttach(t, b, key)
		after := countsOf(b)

		if d := after.configurators - before.configurators; d != 2 {
			t.Errorf("%s: added %d configurators, want 2", key, d)
		}
		if d := after.sources - before.sources; d != 1 {
			t.Errorf("%s: added %d sources, want 1", key, d)
		}
		if d := after.services - before.services; d != 1 {
			t.Errorf("%s: added %d services, want 1", key, d)
		}
	}
}

func TestAttach_Ineligible(t *testing.T) {
	hosts := map[string]hostenv.Context{
		"not running": hostenv.Static{Home: "/home"},
		"nil":         nil,
	}

	for name, host := range hosts {
		t.Run(name, func(t *testing.T) {
			b, _ := newTestBuilder(t, host)
			withBaseline(t, b)
			before := countsOf(b)

			for range 2 {
				mustAttach(t, b, DefaultKey())
				mustAttach(t, b, PrefixKey(customPrefix))
				mustAttach(t, b, PrefixKey(""))
			}

			if got := countsOf(b); got != before {
				t.Errorf("counts = %+v, want %+v", got, before)
			}
		})
	}
}

func TestAttach_InvalidKey(t *testing.T) {
	for _, prefix := range []string{"", "has space", "-leading", "a/b"} {
		t.Run(prefix, func(t *testing.T) {
			b, _ := newTestBuilder(t, azureHost)
			withBaseline(t, b)
			before := countsOf(b)

			err := b.Attach(PrefixKey(prefix))
			if err == nil {
				t.Fatal("expected error for invalid prefix")
			}
			if !errors.Is(err, errors.ErrInvalidKey) {
				t.Errorf("error = %v, want ErrInvalidKey", err)
			}
			var regErr *errors.RegistrationError
			if !errors.As(err, &regErr) {
				t.Errorf("error = %T, want *RegistrationError", err)
			}
			if got := countsOf(b); got != before {
				t.Errorf("counts = %+v, want %+v", got, before)
			}
		})
	}
}

func TestAttach_EmptyPrefixDoesNotAffectDefault(t *testing.T) {
	b, _ := newTestBuilder(t, azureHost)

	mustAttach(t, b, DefaultKey())
	if err := b.Attach(PrefixKey("")); !errors.Is(err, errors.ErrInvalidKey) {
		t.Errorf("Attach(\"\") = %v, want ErrInvalidKey", err)
	}

	tokens := b.Ledger().Tokens()
	if len(tokens) != 1 || tokens[0].Keyed {
		t.Errorf("ledger = %v, want only the default key", tokens)
	}
}

func TestAttach_FailureRollsBack(t *testing.T) {
	b, _ := newTestBuilder(t, azureHost)
	withBaseline(t, b)
	before := countsOf(b)

	boom := errors.New("boom")
	partial := func(b *Builder, key Key) error {
		_ = b.services.Add(registry.Instance(ProviderKind, key.ProviderName(), nil))
		_ = b.filters.ConfigureFunc(func(*filter.Options) {})
		return boom
	}

	err := attach(b, PrefixKey("api"), azureHost, partial)
	if err != boom {
		t.Fatalf("attach() = %v, want the inner error unchanged", err)
	}
	if got := countsOf(b); got != before {
		t.Errorf("counts after failure = %+v, want %+v", got, before)
	}
	if b.Ledger().Has(PrefixKey("api").token()) {
		t.Error("failed registration should not be recorded")
	}

	// A retry with a working registration succeeds.
	mustAttach(t, b, PrefixKey("api"))
	got := countsOf(b)
	want := counts{services: 1, configurators: 4, sources: 2, ledger: 1}
	if got != want {
		t.Errorf("counts after retry = %+v, want %+v", got, want)
	}
}

func TestAttach_AfterBuild(t *testing.T) {
	b, _ := newTestBuilder(t, azureHost)
	mustAttach(t, b, DefaultKey())

	comp, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer func() { _ = comp.Close() }()

	before := countsOf(b)
	err = b.Attach(PrefixKey("late"))
	if !errors.Is(err, errors.ErrSealed) {
		t.Errorf("Attach after Build = %v, want ErrSealed", err)
	}
	if got := countsOf(b); got != before {
		t.Errorf("counts = %+v, want %+v", got, before)
	}

	if _, err := b.Build(); !errors.Is(err, errors.ErrSealed) {
		t.Errorf("second Build = %v, want ErrSealed", err)
	}
}

func TestAttach_Events(t *testing.T) {
	bus := event.NewBus()
	var outcomes []event.Outcome
	bus.Subscribe(event.TypeRegistration, func(e event.Event) {
		outcomes = append(outcomes, e.(event.RegistrationEvent).Outcome)
	})

	b, _ := newTestBuilder(t, azureHost, WithBus(bus))
	mustAttach(t, b, DefaultKey())
	mustAttach(t, b, DefaultKey())
	_ = b.Attach(PrefixKey(""))

	ineligible, _ := newTestBuilder(t, hostenv.Static{}, WithBus(bus))
	mustAttach(t, ineligible, DefaultKey())

	want := []event.Outcome{
		event.OutcomeAttached,
		event.OutcomeDuplicate,
		event.OutcomeFailed,
		event.OutcomeIneligible,
	}
	if len(outcomes) != len(want) {
		t.Fatalf("outcomes = %v, want %v", outcomes, want)
	}
	for i := range want {
		if outcomes[i] != want[i] {
			t.Errorf("outcomes[%d] = %q, want %q", i, outcomes[i], want[i])
		}
	}
}

func TestAttach_SharedLedger(t *testing.T) {
	services := registry.New()
	ledger := registry.NewLedger()

	first, _ := newTestBuilder(t, azureHost, WithRegistry(services), WithLedger(ledger))
	second, _ := newTestBuilder(t, azureHost, WithRegistry(services), WithLedger(ledger))

	mustAttach(t, first, PrefixKey("api"))
	mustAttach(t, second, PrefixKey("api"))

	if services.Len() != 1 {
		t.Errorf("services = %d, want 1", services.Len())
	}
	if second.Filters().ConfiguratorCount() != 1 {
		t.Errorf("second builder configurators = %d, want 1", second.Filters().ConfiguratorCount())
	}
}

func TestAttachConfigured(t *testing.T) {
	src := newSource(t, `
diagnostics:
  prefixes:
    blue:
      level: debug
    api:
      enabled: false
`)
	b := NewBuilder(src, azureHost, WithFs(afero.NewMemMapFs()))

	if err := b.AttachConfigured(); err != nil {
		t.Fatalf("AttachConfigured failed: %v", err)
	}
	if err := b.AttachConfigured(); err != nil {
		t.Fatalf("second AttachConfigured failed: %v", err)
	}

	var got []string
	for _, tok := range b.Ledger().Tokens() {
		got = append(got, tok.String())
	}
	want := []string{
		"logging.provider[<default>]",
		`logging.provider["api"]`,
		`logging.provider["blue"]`,
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ledger = %v, want %v", got, want)
	}
	if b.Services().Len() != 3 {
		t.Errorf("services = %d, want 3", b.Services().Len())
	}
}

func TestAttach_PrefixCaseInsensitive(t *testing.T) {
	src := newSource(t, `
diagnostics:
  prefixes:
    customPrefix:
      enabled: true
`)
	fs := afero.NewMemMapFs()
	b := NewBuilder(src, azureHost, WithFs(fs))

	mustAttach(t, b, PrefixKey(customPrefix))
	before := countsOf(b)
	if err := b.AttachConfigured(); err != nil {
		t.Fatalf("AttachConfigured failed: %v", err)
	}
	mustAttach(t, b, PrefixKey(strings.ToUpper(customPrefix)))

	// Only the default key is new.
	want := counts{
		services:      before.services + 1,
		configurators: before.configurators + 2,
		sources:       before.sources + 1,
		ledger:        before.ledger + 1,
	}
	if got := countsOf(b); got != want {
		t.Errorf("counts = %+v, want %+v", got, want)
	}

	if got := b.Attached(PrefixKey("customprefix")); got != PrefixKey(customPrefix) {
		t.Errorf("Attached() = %v, want the first attached key %v", got, PrefixKey(customPrefix))
	}
	wantPath := "/home/LogFiles/Application/customPrefix-diagnostics.txt"
	if got := b.LogPath(PrefixKey("customprefix")); got != wantPath {
		t.Errorf("LogPath() = %q, want %q", got, wantPath)
	}

	comp, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer func() { _ = comp.Close() }()

	var names []string
	for _, p := range comp.Factory.Providers() {
		names = append(names, p.Name())
	}
	wantNames := []string{"diagnostics:" + customPrefix, "diagnostics"}
	if strings.Join(names, ",") != strings.Join(wantNames, ",") {
		t.Errorf("providers = %v, want %v", names, wantNames)
	}
	if ok, _ := afero.Exists(fs, "/home/LogFiles/Application/customprefix-diagnostics.txt"); ok {
		t.Error("a second file was created for the lowercased prefix")
	}
}

func TestBuild_ResolvesProviders(t *testing.T) {
	b, fs := newTestBuilder(t, azureHost)
	withBaseline(t, b)
	mustAttach(t, b, DefaultKey())
	mustAttach(t, b, PrefixKey(customPrefix))
	mustAttach(t, b, PrefixKey(customPrefix))

	comp, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer func() { _ = comp.Close() }()

	last, err := registry.Resolve[logging.Provider](comp.Container, ProviderKind)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if last.Name() != "diagnostics:"+customPrefix {
		t.Errorf("Resolve().Name() = %q, want the last registered provider", last.Name())
	}

	providers := comp.Factory.Providers()
	if len(providers) != 2 {
		t.Fatalf("got %d providers, want 2", len(providers))
	}

	wantPaths := []string{
		"/home/LogFiles/Application/diagnostics.txt",
		"/home/LogFiles/Application/customPrefix-diagnostics.txt",
	}
	for i, p := range providers {
		fp, ok := p.(*logging.FileProvider)
		if !ok {
			t.Fatalf("providers[%d] is %T, want *logging.FileProvider", i, p)
		}
		if fp.Path() != wantPaths[i] {
			t.Errorf("providers[%d].Path() = %q, want %q", i, fp.Path(), wantPaths[i])
		}
		if ok, _ := afero.Exists(fs, wantPaths[i]); !ok {
			t.Errorf("%s was not created", wantPaths[i])
		}
	}
}

func TestBuild_NoProvidersWhenIneligible(t *testing.T) {
	b, _ := newTestBuilder(t, hostenv.Static{})
	mustAttach(t, b, DefaultKey())

	comp, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer func() { _ = comp.Close() }()

	if comp.Container.Has(ProviderKind) {
		t.Error("no provider should be registered on an ineligible host")
	}
	comp.Factory.Logger("app").Error("dropped")
}

func TestAttach_MissingHome(t *testing.T) {
	b, _ := newTestBuilder(t, hostenv.Static{Running: true})
	withBaseline(t, b)
	before := countsOf(b)

	err := b.Attach(DefaultKey())
	if err == nil {
		t.Fatal("expected Attach to fail when the host has no home directory")
	}
	if !errors.Is(err, errors.ErrNoHome) {
		t.Errorf("error = %v, want it to wrap ErrNoHome", err)
	}
	if got := countsOf(b); got != before {
		t.Errorf("counts after failed attach = %+v, want %+v", got, before)
	}

	comp, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer func() { _ = comp.Close() }()
	if comp.Container.Has(ProviderKind) {
		t.Error("no provider should be registered without a home directory")
	}
}

func TestFilterOptions(t *testing.T) {
	src := newSource(t, `
logging:
  log_level:
    default: debug
diagnostics:
  level: information
  log_level:
    app.noisy: error
  prefixes:
    api:
      level: debug
    quiet:
      enabled: false
      log_level:
        app: trace
`)
	b := NewBuilder(src, azureHost, WithFs(afero.NewMemMapFs()))
	withBaseline(t, b)
	if err := b.AttachConfigured(); err != nil {
		t.Fatalf("AttachConfigured failed: %v", err)
	}

	opts := b.Filters().Materialize()
	if opts.MinLevel != slog.LevelDebug {
		t.Errorf("MinLevel = %v, want debug", opts.MinLevel)
	}

	tests := []struct {
		provider string
		category string
		want     slog.Level
	}{
		{"diagnostics", "app", slog.LevelInfo},
		{"diagnostics", "app.noisy", slog.LevelError},
		{"diagnostics", "app.noisy.child", slog.LevelError},
		{"diagnostics:api", "app.noisy", slog.LevelDebug},
		{"diagnostics:quiet", "app", filter.LevelNone},
		{"other", "app", slog.LevelDebug},
	}
	for _, tt := range tests {
		if got := opts.Level(tt.provider, tt.category); got != tt.want {
			t.Errorf("Level(%q, %q) = %v, want %v", tt.provider, tt.category, got, tt.want)
		}
	}
}

func TestEndToEnd(t *testing.T) {
	src := newSource(t, `
diagnostics:
  level: information
  prefixes:
    api:
      level: debug
`)
	fs := afero.NewMemMapFs()
	b := NewBuilder(src, azureHost, WithFs(fs))
	withBaseline(t, b)
	if err := b.AttachConfigured(); err != nil {
		t.Fatalf("AttachConfigured failed: %v", err)
	}

	comp, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	logger := comp.Factory.Logger("app.http")
	logger.Debug("debug message")
	logger.Info("info message", "status", 200)

	// Raising the default level applies to records written afterwards.
	src.Set("diagnostics:level", "error")
	logger.Warn("warn after reload")

	if err := comp.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	read := func(name string) []string {
		t.Helper()
		entries, err := logging.ReadEntries(fs, "/home/LogFiles/Application/"+name)
		if err != nil {
			t.Fatalf("ReadEntries(%s) failed: %v", name, err)
		}
		var msgs []string
		for _, e := range entries {
			if e.Category != "app.http" {
				t.Errorf("%s: category = %q, want app.http", name, e.Category)
			}
			msgs = append(msgs, e.Level+":"+e.Message)
		}
		return msgs
	}

	gotDefault := read("diagnostics.txt")
	wantDefault := []string{"information:info message"}
	if strings.Join(gotDefault, ",") != strings.Join(wantDefault, ",") {
		t.Errorf("diagnostics.txt = %v, want %v", gotDefault, wantDefault)
	}

	gotAPI := read("api-diagnostics.txt")
	wantAPI := []string{"debug:debug message", "information:info message", "warning:warn after reload"}
	if strings.Join(gotAPI, ",") != strings.Join(wantAPI, ",") {
		t.Errorf("api-diagnostics.txt = %v, want %v", gotAPI, wantAPI)
	}
}

func TestSettings(t *testing.T) {
	src := newSource(t, `
diagnostics:
  file_name: app.log
  file_size_limit: 2048
  prefixes:
    api:
      retained_file_count_limit: 5
      flush_period: 250ms
      compress: true
    broken:
      file_size_limit: lots
`)
	b := NewBuilder(src, azureHost, WithFs(afero.NewMemMapFs()))

	def := b.Settings(DefaultKey())
	if def.FileName != "app.log" || def.FileSizeLimit != 2048 {
		t.Errorf("default settings = %+v", def)
	}
	if got, want := b.LogPath(DefaultKey()), "/home/LogFiles/Application/app.log"; got != want {
		t.Errorf("LogPath(default) = %q, want %q", got, want)
	}

	api := b.Settings(PrefixKey("api"))
	if api.FileName != "api-diagnostics.txt" {
		t.Errorf("api FileName = %q, want api-diagnostics.txt", api.FileName)
	}
	if api.RetainedFileCountLimit != 5 || api.FlushPeriod != 250*time.Millisecond {
		t.Errorf("api settings = %+v", api)
	}
	if api.FileSizeLimit != config.DefaultFileSizeLimit {
		t.Errorf("api FileSizeLimit = %d, want default", api.FileSizeLimit)
	}
	if !api.Compress || def.Compress {
		t.Errorf("Compress: api = %v, default = %v; want true, false", api.Compress, def.Compress)
	}

	broken := b.Settings(PrefixKey("broken"))
	if broken.FileSizeLimit != config.DefaultFileSizeLimit || broken.FileName != "broken-diagnostics.txt" {
		t.Errorf("undecodable section should fall back to defaults, got %+v", broken)
	}

	noHome := NewBuilder(src, hostenv.Static{Running: true})
	if got := noHome.LogPath(DefaultKey()); got != "" {
		t.Errorf("LogPath without home = %q, want empty", got)
	}

	mustAttach(t, b, PrefixKey("api"))
	comp, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer func() { _ = comp.Close() }()

	p, err := registry.Resolve[logging.Provider](comp.Container, ProviderKind)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	opts := p.(*logging.FileProvider).Options()
	if !opts.Compress || opts.RetainedFileCountLimit != 5 {
		t.Errorf("provider options = %+v, want compressed with 5 retained files", opts)
	}
}
