package compileinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	z := &debug.BuildInfo{
		GoVersion: "go1.18",
		Path:      "github.com/carbocation/dereport/cmd/dereport",
		Main:      debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2022-06-01T00:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	c := fromBuildInfo(z)
	if c.Commit != "abc123" || !c.Modified || c.GoVersion != "go1.18" {
		t.Fatalf("Unexpected compile info: %+v", c)
	}
	if s := c.String(); !strings.Contains(s, "abc123") || !strings.Contains(s, "uncommitted") {
		t.Errorf("String() lost details: %s", s)
	}
}

func TestEmpty(t *testing.T) {
	if s := (CompileInfo{}).String(); !strings.HasPrefix(s, "No build information") {
		t.Errorf("Unexpected string for empty info: %s", s)
	}
}
