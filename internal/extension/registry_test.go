package extension

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

type memStore struct {
	data      map[string]map[string]string
	writes    int
	failWrite error
	failRead  error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]map[string]string)}
}

func (s *memStore) Read(_ context.Context, key string) (map[string]string, error) {
	if s.failRead != nil {
		return nil, s.failRead
	}
	out := make(map[string]string)
	for k, v := range s.data[key] {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) Write(_ context.Context, key string, values map[string]string) error {
	if s.failWrite != nil {
		return s.failWrite
	}
	s.writes++
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	s.data[key] = cp
	return nil
}

type fakeEnv struct {
	installed map[string]bool
	activated map[string]bool
	names     map[string]string
	calls     []string
	failWith  error
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{
		installed: make(map[string]bool),
		activated: make(map[string]bool),
		names:     make(map[string]string),
	}
}

func (e *fakeEnv) IsInstalled(slug string) bool { return e.installed[slug] }
func (e *fakeEnv) IsActivated(slug string) bool { return e.activated[slug] }

func (e *fakeEnv) Install(_ context.Context, slug string) error {
	e.calls = append(e.calls, "install:"+slug)
	if e.failWith != nil {
		return e.failWith
	}
	e.installed[slug] = true
	return nil
}

func (e *fakeEnv) Activate(_ context.Context, slug string) error {
	e.calls = append(e.calls, "activate:"+slug)
	if e.failWith != nil {
		return e.failWith
	}
	e.activated[slug] = true
	return nil
}

func (e *fakeEnv) Deactivate(_ context.Context, slug string) error {
	e.calls = append(e.calls, "deactivate:"+slug)
	if e.failWith != nil {
		return e.failWith
	}
	e.activated[slug] = false
	return nil
}

func (e *fakeEnv) Uninstall(_ context.Context, slug string) error {
	e.calls = append(e.calls, "uninstall:"+slug)
	if e.failWith != nil {
		return e.failWith
	}
	e.installed[slug] = false
	e.activated[slug] = false
	return nil
}

func (e *fakeEnv) DisplayName(slug string) string {
	if n, ok := e.names[slug]; ok {
		return n
	}
	return slug
}

type recordingNotifier struct {
	changes []Change
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, c Change) error {
	n.changes = append(n.changes, c)
	return n.err
}

func sampleDescriptors() []Descriptor {
	return []Descriptor{
		{Key: "seo", Type: TypeModule, Slug: "seo-module", Deps: []string{"seo-pro"}, BaseStatus: StatusOff},
		{Key: "forms", Type: TypeModule, BaseStatus: StatusOn},
		{Key: "gallery", Type: TypeAddon, Slug: "gallery-addon", BaseStatus: StatusOff},
		{Key: "mailer", Type: TypePlugin, Slug: "mailer", BaseStatus: StatusOff},
		{Key: "booking", Type: TypeHostPlugin, Slug: "booking", BaseStatus: StatusOff},
		{Key: "legacy", Type: "widget", BaseStatus: StatusOff},
	}
}

func TestAllStatusLaws(t *testing.T) {
	tests := []struct {
		name      string
		d         Descriptor
		installed []string
		activated []string
		want      Status
	}{
		{"module dep missing", Descriptor{Key: "m", Type: TypeModule, Deps: []string{"d"}}, nil, nil, StatusUpgrade},
		{"module dep installed", Descriptor{Key: "m", Type: TypeModule, Deps: []string{"d"}}, []string{"d"}, nil, StatusInstall},
		{"module dep active", Descriptor{Key: "m", Type: TypeModule, Deps: []string{"d"}}, []string{"d"}, []string{"d"}, StatusActivate},
		{"module only first dep counts", Descriptor{Key: "m", Type: TypeModule, Deps: []string{"d", "e"}}, []string{"d"}, []string{"d"}, StatusActivate},
		{"module without deps keeps preference", Descriptor{Key: "m", Type: TypeModule, BaseStatus: StatusOn}, nil, nil, StatusOn},
		{"plugin missing", Descriptor{Key: "p", Type: TypePlugin, Slug: "p"}, nil, nil, StatusUpgrade},
		{"plugin installed", Descriptor{Key: "p", Type: TypePlugin, Slug: "p"}, []string{"p"}, nil, StatusInstall},
		{"plugin active", Descriptor{Key: "p", Type: TypePlugin, Slug: "p"}, []string{"p"}, []string{"p"}, StatusActivate},
		{"addon missing", Descriptor{Key: "a", Type: TypeAddon, Slug: "a"}, nil, nil, StatusUpgrade},
		{"addon installed", Descriptor{Key: "a", Type: TypeAddon, Slug: "a"}, []string{"a"}, nil, StatusInstall},
		{"addon active", Descriptor{Key: "a", Type: TypeAddon, Slug: "a"}, []string{"a"}, []string{"a"}, StatusActivate},
		{"host plugin missing is install", Descriptor{Key: "h", Type: TypeHostPlugin, Slug: "h"}, nil, nil, StatusInstall},
		{"host plugin inactive", Descriptor{Key: "h", Type: TypeHostPlugin, Slug: "h"}, []string{"h"}, nil, StatusInstall},
		{"host plugin active", Descriptor{Key: "h", Type: TypeHostPlugin, Slug: "h"}, []string{"h"}, []string{"h"}, StatusActivate},
		{"unknown type on", Descriptor{Key: "x", Type: "widget", BaseStatus: StatusOn}, nil, nil, StatusOn},
		{"unknown type off", Descriptor{Key: "x", Type: "widget", BaseStatus: StatusOff}, nil, nil, StatusOff},
		{"empty base status is off", Descriptor{Key: "x", Type: "widget"}, nil, nil, StatusOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newFakeEnv()
			for _, s := range tt.installed {
				env.installed[s] = true
			}
			for _, s := range tt.activated {
				env.activated[s] = true
			}
			reg := New("extensions", []Descriptor{tt.d}, newMemStore(), env)

			all, err := reg.All(context.Background())
			if err != nil {
				t.Fatalf("All() error: %v", err)
			}
			if len(all) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(all))
			}
			if all[0].Status != tt.want {
				t.Errorf("status = %q, want %q", all[0].Status, tt.want)
			}
		})
	}
}

func TestAllPreservesOrderAndCoversEveryDescriptor(t *testing.T) {
	reg := New("extensions", sampleDescriptors(), newMemStore(), newFakeEnv())

	all, err := reg.All(context.Background())
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}

	want := []string{"seo", "forms", "gallery", "mailer", "booking", "legacy"}
	if got := all.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestAllFallsBackToBaseStatus(t *testing.T) {
	store := newMemStore()
	store.data["extensions"] = map[string]string{"legacy": "on"}
	reg := New("extensions", sampleDescriptors(), store, newFakeEnv())

	all, err := reg.All(context.Background())
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}

	forms, _ := all.Lookup("forms")
	if !forms.Enabled || forms.Status != StatusOn {
		t.Errorf("forms: enabled=%v status=%q, want base status on", forms.Enabled, forms.Status)
	}
	legacy, _ := all.Lookup("legacy")
	if !legacy.Enabled || legacy.Status != StatusOn {
		t.Errorf("legacy: enabled=%v status=%q, want stored on", legacy.Enabled, legacy.Status)
	}
}

func TestAllIgnoresStaleKeys(t *testing.T) {
	store := newMemStore()
	store.data["extensions"] = map[string]string{"removed-long-ago": "on"}
	reg := New("extensions", sampleDescriptors(), store, newFakeEnv())

	all, err := reg.All(context.Background())
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if _, ok := all.Lookup("removed-long-ago"); ok {
		t.Error("stale settings key should not appear in resolution")
	}
	if len(all) != len(sampleDescriptors()) {
		t.Errorf("len = %d, want %d", len(all), len(sampleDescriptors()))
	}
}

func TestAllIsIdempotent(t *testing.T) {
	env := newFakeEnv()
	env.installed["seo-pro"] = true
	reg := New("extensions", sampleDescriptors(), newMemStore(), env)

	first, err := reg.All(context.Background())
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	second, err := reg.All(context.Background())
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("consecutive All() calls differ:\n%v\n%v", first, second)
	}
}

func TestAllReadError(t *testing.T) {
	store := newMemStore()
	store.failRead = errors.New("connection refused")
	reg := New("extensions", sampleDescriptors(), store, newFakeEnv())

	if _, err := reg.All(context.Background()); err == nil {
		t.Fatal("expected error when the store cannot be read")
	}
}

func TestSeoScenario(t *testing.T) {
	env := newFakeEnv()
	reg := New("extensions", []Descriptor{
		{Key: "seo", Type: TypeModule, Slug: "seo-module", Deps: []string{"seo-pro"}, BaseStatus: StatusOff},
	}, newMemStore(), env)
	ctx := context.Background()

	steps := []struct {
		name  string
		setup func()
		want  Status
	}{
		{"dependency missing", func() {}, StatusUpgrade},
		{"dependency installed", func() { env.installed["seo-pro"] = true }, StatusInstall},
		{"dependency activated", func() { env.activated["seo-pro"] = true }, StatusActivate},
	}

	for _, step := range steps {
		step.setup()
		all, err := reg.All(ctx)
		if err != nil {
			t.Fatalf("%s: All() error: %v", step.name, err)
		}
		seo, ok := all.Lookup("seo")
		if !ok {
			t.Fatalf("%s: seo missing from resolution", step.name)
		}
		if seo.Status != step.want {
			t.Errorf("%s: status = %q, want %q", step.name, seo.Status, step.want)
		}
	}
}

func TestEnabledIsOnSubset(t *testing.T) {
	store := newMemStore()
	store.data["extensions"] = map[string]string{"legacy": "on", "mailer": "on"}
	reg := New("extensions", sampleDescriptors(), store, newFakeEnv())
	ctx := context.Background()

	all, err := reg.All(ctx)
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	enabled, err := reg.Enabled(ctx)
	if err != nil {
		t.Fatalf("Enabled() error: %v", err)
	}

	want := all.Filter(func(r Resolved) bool { return r.Status == StatusOn })
	if !reflect.DeepEqual(enabled, want) {
		t.Errorf("Enabled() = %v, want %v", enabled.Keys(), want.Keys())
	}
	// mailer is stored on but its slug is not installed, so it shows upgrade.
	if got := enabled.Keys(); !reflect.DeepEqual(got, []string{"forms", "legacy"}) {
		t.Errorf("enabled keys = %v, want [forms legacy]", got)
	}
}

func TestByTypeFilters(t *testing.T) {
	reg := New("extensions", sampleDescriptors(), newMemStore(), newFakeEnv())
	ctx := context.Background()

	tests := []struct {
		name string
		get  func(context.Context) (Set, error)
		want []string
	}{
		{"modules", reg.Modules, []string{"seo", "forms"}},
		{"addons", reg.Addons, []string{"gallery"}},
		{"plugins", reg.Plugins, []string{"mailer"}},
		{"host plugins", reg.HostPlugins, []string{"booking"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := tt.get(ctx)
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if got := set.Keys(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("keys = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFind(t *testing.T) {
	reg := New("extensions", sampleDescriptors(), newMemStore(), newFakeEnv())

	d, ok := reg.Find("gallery")
	if !ok {
		t.Fatal("Find(gallery) not found")
	}
	if d.Slug != "gallery-addon" {
		t.Errorf("slug = %q, want gallery-addon", d.Slug)
	}

	if _, ok := reg.Find("nope"); ok {
		t.Error("Find(nope) should report absent")
	}
}

func TestUpdateUnknownKeyLeavesStoreUnchanged(t *testing.T) {
	store := newMemStore()
	store.data["extensions"] = map[string]string{"forms": "on"}
	reg := New("extensions", sampleDescriptors(), store, newFakeEnv())

	err := reg.Update(context.Background(), "nope", "on")
	if !errors.Is(err, ErrUnknownExtension) {
		t.Fatalf("Update(nope) error = %v, want ErrUnknownExtension", err)
	}
	if store.writes != 0 {
		t.Errorf("store written %d times, want 0", store.writes)
	}
	if !reflect.DeepEqual(store.data["extensions"], map[string]string{"forms": "on"}) {
		t.Errorf("store changed: %v", store.data["extensions"])
	}
}

func TestUpdateNormalizesAndMerges(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"off", "off"},
		{"on", "on"},
		{"install", "on"},
		{"", "on"},
		{"OFF", "on"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			store := newMemStore()
			store.data["extensions"] = map[string]string{"stale": "on", "forms": "off"}
			reg := New("extensions", sampleDescriptors(), store, newFakeEnv())

			if err := reg.Update(context.Background(), "legacy", tt.status); err != nil {
				t.Fatalf("Update() error: %v", err)
			}

			got := store.data["extensions"]
			if got["legacy"] != tt.want {
				t.Errorf("legacy = %q, want %q", got["legacy"], tt.want)
			}
			if got["stale"] != "on" || got["forms"] != "off" {
				t.Errorf("existing preferences not preserved: %v", got)
			}
		})
	}
}

func TestUpdateOffDoesNotBeatOverride(t *testing.T) {
	env := newFakeEnv()
	env.installed["seo-pro"] = true
	reg := New("extensions", sampleDescriptors(), newMemStore(), env)
	ctx := context.Background()

	for _, key := range []string{"seo", "legacy", "forms"} {
		if err := reg.Update(ctx, key, "off"); err != nil {
			t.Fatalf("Update(%s) error: %v", key, err)
		}
	}

	all, err := reg.All(ctx)
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}

	seo, _ := all.Lookup("seo")
	if seo.Status != StatusInstall {
		t.Errorf("seo status = %q, want install", seo.Status)
	}
	if seo.Enabled {
		t.Error("seo preference should be stored off")
	}
	for _, key := range []string{"legacy", "forms"} {
		r, _ := all.Lookup(key)
		if r.Status != StatusOff {
			t.Errorf("%s status = %q, want off", key, r.Status)
		}
	}
}

func TestUpdateWriteFailure(t *testing.T) {
	store := newMemStore()
	store.failWrite = errors.New("disk full")
	notifier := &recordingNotifier{}
	reg := New("extensions", sampleDescriptors(), store, newFakeEnv(), WithNotifier(notifier))

	if err := reg.Update(context.Background(), "forms", "off"); err == nil {
		t.Fatal("expected error when the write fails")
	}
	if len(notifier.changes) != 0 {
		t.Errorf("failed update should not notify, got %d changes", len(notifier.changes))
	}
}

func TestUpdateNotifies(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("broker down")}
	reg := New("extensions", sampleDescriptors(), newMemStore(), newFakeEnv(), WithNotifier(notifier))
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	reg.now = func() time.Time { return fixed }

	if err := reg.Update(context.Background(), "forms", "off"); err != nil {
		t.Fatalf("notifier failure must not fail Update: %v", err)
	}
	if len(notifier.changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(notifier.changes))
	}
	c := notifier.changes[0]
	if c.Kind != ChangeToggled || c.Key != "forms" || c.Enabled || !c.At.Equal(fixed) {
		t.Errorf("unexpected change: %+v", c)
	}
}

func TestBootAppliesFilterAndReplacesState(t *testing.T) {
	filter := func(in []Descriptor) []Descriptor {
		out := []Descriptor{}
		for _, d := range in {
			if d.Key != "legacy" {
				out = append(out, d)
			}
		}
		return append(out, Descriptor{Key: "injected", Type: "widget", BaseStatus: StatusOn})
	}
	reg := New("first", sampleDescriptors(), newMemStore(), newFakeEnv(), WithFilter(filter))

	if _, ok := reg.Find("legacy"); ok {
		t.Error("filter should have removed legacy")
	}
	if _, ok := reg.Find("injected"); !ok {
		t.Error("filter should have added injected")
	}

	reg.Boot("second", []Descriptor{{Key: "solo", Type: TypePlugin, Slug: "solo"}})
	if reg.SettingsKey() != "second" {
		t.Errorf("SettingsKey() = %q, want second", reg.SettingsKey())
	}
	if _, ok := reg.Find("seo"); ok {
		t.Error("re-boot should drop previous descriptors")
	}
	if got := len(reg.Descriptors()); got != 2 {
		t.Errorf("len(Descriptors()) = %d, want 2 (solo + injected)", got)
	}
}

func TestBootDuplicateKeys(t *testing.T) {
	reg := New("extensions", []Descriptor{
		{Key: "a", Type: "widget", BaseStatus: StatusOff},
		{Key: "b", Type: "widget"},
		{Key: "a", Type: "widget", BaseStatus: StatusOn},
	}, newMemStore(), newFakeEnv())

	ds := reg.Descriptors()
	if len(ds) != 2 {
		t.Fatalf("len = %d, want 2", len(ds))
	}
	if ds[0].Key != "a" || ds[0].BaseStatus != StatusOn {
		t.Errorf("first descriptor = %+v, want later a in first position", ds[0])
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		action    Action
		installed []string
		activated []string
		wantCalls []string
	}{
		{"install plugin", "mailer", ActionInstall, nil, nil, []string{"install:mailer"}},
		{"install already installed", "mailer", ActionInstall, []string{"mailer"}, nil, nil},
		{"activate addon", "gallery", ActionActivate, []string{"gallery-addon"}, nil, []string{"activate:gallery-addon"}},
		{"activate already active", "gallery", ActionActivate, []string{"gallery-addon"}, []string{"gallery-addon"}, nil},
		{"deactivate active", "booking", ActionDeactivate, []string{"booking"}, []string{"booking"}, []string{"deactivate:booking"}},
		{"deactivate inactive", "booking", ActionDeactivate, []string{"booking"}, nil, nil},
		{"module installs first dependency", "seo", ActionInstall, nil, nil, []string{"install:seo-pro"}},
		{"uninstall installed", "mailer", ActionUninstall, []string{"mailer"}, []string{"mailer"}, []string{"uninstall:mailer"}},
		{"uninstall missing", "mailer", ActionUninstall, nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newFakeEnv()
			for _, s := range tt.installed {
				env.installed[s] = true
			}
			for _, s := range tt.activated {
				env.activated[s] = true
			}
			store := newMemStore()
			reg := New("extensions", sampleDescriptors(), store, env)

			if err := reg.Transition(context.Background(), tt.key, tt.action); err != nil {
				t.Fatalf("Transition() error: %v", err)
			}
			if !reflect.DeepEqual(env.calls, tt.wantCalls) {
				t.Errorf("calls = %v, want %v", env.calls, tt.wantCalls)
			}
			if store.writes != 0 {
				t.Errorf("Transition wrote preferences %d times", store.writes)
			}
		})
	}
}

func TestTransitionErrors(t *testing.T) {
	env := newFakeEnv()
	reg := New("extensions", append(sampleDescriptors(),
		Descriptor{Key: "noslug", Type: TypeAddon},
	), newMemStore(), env)
	ctx := context.Background()

	if err := reg.Transition(ctx, "nope", ActionInstall); !errors.Is(err, ErrUnknownExtension) {
		t.Errorf("unknown key error = %v, want ErrUnknownExtension", err)
	}
	if err := reg.Transition(ctx, "noslug", ActionInstall); !errors.Is(err, ErrNoTarget) {
		t.Errorf("missing slug error = %v, want ErrNoTarget", err)
	}
	if err := reg.Transition(ctx, "forms", ActionInstall); !errors.Is(err, ErrNoTarget) {
		t.Errorf("module without deps error = %v, want ErrNoTarget", err)
	}
	if err := reg.Transition(ctx, "mailer", Action("upgrade")); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("bad action error = %v, want ErrUnknownAction", err)
	}

	boom := errors.New("download failed")
	env.failWith = boom
	if err := reg.Transition(ctx, "mailer", ActionInstall); !errors.Is(err, boom) {
		t.Errorf("environment error = %v, want wrapped %v", err, boom)
	}
}

func TestTransitionNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	env := newFakeEnv()
	reg := New("extensions", sampleDescriptors(), newMemStore(), env, WithNotifier(notifier))
	ctx := context.Background()

	if err := reg.Transition(ctx, "seo", ActionInstall); err != nil {
		t.Fatalf("Transition() error: %v", err)
	}
	if err := reg.Transition(ctx, "seo", ActionInstall); err != nil {
		t.Fatalf("second Transition() error: %v", err)
	}

	if len(notifier.changes) != 1 {
		t.Fatalf("expected 1 change (second install is a no-op), got %d", len(notifier.changes))
	}
	c := notifier.changes[0]
	if c.Kind != ChangeTransitioned || c.Action != ActionInstall || c.Target != "seo-pro" {
		t.Errorf("unexpected change: %+v", c)
	}
}

func TestDependencyHelpers(t *testing.T) {
	env := newFakeEnv()
	env.names["seo-pro"] = "SEO Pro"
	reg := New("extensions", []Descriptor{
		{Key: "seo", Type: TypeModule, Deps: []string{"seo-pro", "sitemaps"}, NeedsUpgrade: true},
		{Key: "plain", Type: "widget"},
	}, newMemStore(), env)

	if !reg.NeedsUpgrade("seo") || reg.NeedsUpgrade("plain") || reg.NeedsUpgrade("nope") {
		t.Error("NeedsUpgrade mismatch")
	}
	if got := reg.Dependencies("plain"); got != nil {
		t.Errorf("Dependencies(plain) = %v, want nil", got)
	}
	if got := reg.DependencyString("seo"); got != "SEO Pro,sitemaps" {
		t.Errorf("DependencyString(seo) = %q", got)
	}
	if reg.DependenciesResolved("seo") {
		t.Error("seo dependencies should be unresolved")
	}
	if !reg.DependenciesResolved("plain") || !reg.DependenciesResolved("nope") {
		t.Error("keys without dependencies should be resolved")
	}

	env.activated["seo-pro"] = true
	env.activated["sitemaps"] = true
	if !reg.DependenciesResolved("seo") {
		t.Error("seo dependencies should be resolved once all are active")
	}
}

func TestResolvedNotice(t *testing.T) {
	env := newFakeEnv()
	env.installed["seo-pro"] = true
	env.activated["seo-pro"] = true
	reg := New("extensions", []Descriptor{
		{Key: "seo", Type: TypeModule, Deps: []string{"seo-pro", "sitemaps"}},
	}, newMemStore(), env)

	all, err := reg.All(context.Background())
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	seo, _ := all.Lookup("seo")
	if seo.Status != StatusActivate {
		t.Errorf("status = %q, want activate (first dependency only)", seo.Status)
	}
	if !seo.Notice {
		t.Error("notice should be set while sitemaps is inactive")
	}
}

func TestTransitionUninstallNotifies(t *testing.T) {
	env := newFakeEnv()
	env.installed["mailer"] = true
	n := &recordingNotifier{}
	reg := New("extensions", sampleDescriptors(), newMemStore(), env, WithNotifier(n))

	if err := reg.Transition(context.Background(), "mailer", ActionUninstall); err != nil {
		t.Fatalf("Transition() error: %v", err)
	}
	if len(n.changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(n.changes))
	}
	c := n.changes[0]
	if c.Kind != ChangeTransitioned || c.Action != ActionUninstall || c.Target != "mailer" {
		t.Errorf("change = %+v", c)
	}
}

func TestParseAction(t *testing.T) {
	for _, s := range []string{"install", "activate", "deactivate", "uninstall"} {
		if _, err := ParseAction(s); err != nil {
			t.Errorf("ParseAction(%q) error: %v", s, err)
		}
	}
	if _, err := ParseAction("upgrade"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("ParseAction(upgrade) error = %v, want ErrUnknownAction", err)
	}
}
