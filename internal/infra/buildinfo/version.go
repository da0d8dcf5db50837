package buildinfo

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// Set with -ldflags "-X". Left at their zero values, Get falls back to the
// module and VCS data the Go toolchain embeds in the binary.
var (
	Version   = ""
	Commit    = ""
	BuildTime = ""
)

const unknown = "unknown"

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Modified  bool   `json:"modified,omitempty"`
}

var (
	once sync.Once
	info Info
)

// Get returns the build information, resolved once per process.
func Get() Info {
	once.Do(func() {
		bi, _ := debug.ReadBuildInfo()
		info = resolve(bi)
	})
	return info
}

// resolve merges the ldflags values with the embedded build info. ldflags
// values win.
func resolve(bi *debug.BuildInfo) Info {
	out := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}

	if bi != nil {
		if out.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			out.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if out.Commit == "" {
					out.Commit = shortRevision(s.Value)
				}
			case "vcs.time":
				if out.BuildTime == "" {
					out.BuildTime = s.Value
				}
			case "vcs.modified":
				out.Modified = s.Value == "true"
			}
		}
		if bi.GoVersion != "" {
			out.GoVersion = bi.GoVersion
		}
	}

	if out.Version == "" {
		out.Version = "dev"
	}
	if out.Commit == "" {
		out.Commit = unknown
	}
	if out.BuildTime == "" {
		out.BuildTime = unknown
	}
	return out
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// String formats the build information for --version output.
func String() string {
	return Get().String()
}

// String formats i as "v1.2.0 (3f2a9c1d04be, dirty) built at ...".
func (i Info) String() string {
	commit := i.Commit
	if i.Modified {
		commit += ", dirty"
	}
	return i.Version + " (" + commit + ") built at " + i.BuildTime
}

// UserAgent returns "<program>/<version>" for outgoing requests.
func UserAgent(program string) string {
	return program + "/" + Get().Version
}
