package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func setVars(t *testing.T, version, commit, built string) {
	t.Helper()
	pv, pc, pb := Version, Commit, BuildTime
	t.Cleanup(func() { Version, Commit, BuildTime = pv, pc, pb })
	Version, Commit, BuildTime = version, commit, built
}

func TestResolve(t *testing.T) {
	vcs := &debug.BuildInfo{
		GoVersion: "go1.24.2",
		Main:      debug.Module{Path: "github.com/yndnr/issuemesh-go", Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "3f2a9c1d04be5e6f7a8b9c0d1e2f3a4b5c6d7e8f"},
			{Key: "vcs.time", Value: "2026-03-01T10:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	devel := &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}

	tests := []struct {
		name                  string
		ldVersion, ldCommit   string
		bi                    *debug.BuildInfo
		wantVersion           string
		wantCommit, wantBuilt string
		wantModified          bool
	}{
		{
			name:        "nothing known",
			wantVersion: "dev", wantCommit: unknown, wantBuilt: unknown,
		},
		{
			name: "embedded vcs data",
			bi:   vcs, wantVersion: "v0.3.1", wantCommit: "3f2a9c1d04be",
			wantBuilt: "2026-03-01T10:00:00Z", wantModified: true,
		},
		{
			name:      "ldflags win",
			ldVersion: "v1.0.0", ldCommit: "abc1234", bi: vcs,
			wantVersion: "v1.0.0", wantCommit: "abc1234",
			wantBuilt: "2026-03-01T10:00:00Z", wantModified: true,
		},
		{
			name: "devel module version",
			bi:   devel, wantVersion: "dev", wantCommit: unknown, wantBuilt: unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setVars(t, tt.ldVersion, tt.ldCommit, "")

			got := resolve(tt.bi)
			if got.Version != tt.wantVersion || got.Commit != tt.wantCommit || got.BuildTime != tt.wantBuilt {
				t.Errorf("resolve() = %+v", got)
			}
			if got.Modified != tt.wantModified {
				t.Errorf("Modified = %v, want %v", got.Modified, tt.wantModified)
			}
			if got.GoVersion == "" {
				t.Error("GoVersion is empty")
			}
		})
	}
}

func TestInfo_String(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "v1.0.0", Commit: "abc", BuildTime: "now"}, "v1.0.0 (abc) built at now"},
		{Info{Version: "dev", Commit: "abc", BuildTime: "now", Modified: true}, "dev (abc, dirty) built at now"},
	}
	for _, tt := range tests {
		if got := tt.info.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" || info.Commit == "" || info.BuildTime == "" || info.GoVersion == "" {
		t.Errorf("Get() left a field empty: %+v", info)
	}
	if Get() != info {
		t.Error("Get() is not stable across calls")
	}
	if !strings.HasPrefix(UserAgent("issuemesh-cli"), "issuemesh-cli/") {
		t.Errorf("UserAgent() = %q", UserAgent("issuemesh-cli"))
	}
}
