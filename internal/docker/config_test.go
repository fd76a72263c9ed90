package docker

import (
	"testing"

	"github.com/moby/moby/api/types/mount"
)

func TestBuildConfig(t *testing.T) {
	cfg, host := buildConfig(&RunOpts{
		Image:       "bench:latest",
		Command:     []string{"sh", "-c", "true"},
		Dir:         "/work/bench",
		Env:         map[string]string{"B": "2", "A": "1"},
		CPULimit:    1.5,
		MemoryLimit: 256 << 20,
		UserID:      "1000:1000",
		ExtraMounts: []Mount{
			{Source: "/work/bench", Target: "/work/bench"},
			{Source: "/data", Target: "/data", ReadOnly: true},
		},
	})

	if cfg.WorkingDir != "/work/bench" || cfg.User != "1000:1000" {
		t.Errorf("working dir %q, user %q", cfg.WorkingDir, cfg.User)
	}
	if len(cfg.Env) != 2 || cfg.Env[0] != "A=1" || cfg.Env[1] != "B=2" {
		t.Errorf("env not sorted: %q", cfg.Env)
	}
	if cfg.Labels[Label] != "true" {
		t.Errorf("missing %s label: %v", Label, cfg.Labels)
	}
	if host.NanoCPUs != 1_500_000_000 {
		t.Errorf("NanoCPUs: got %d", host.NanoCPUs)
	}
	if host.Memory != 256<<20 {
		t.Errorf("Memory: got %d", host.Memory)
	}

	want := []mount.Mount{
		{Type: mount.TypeBind, Source: "/work/bench", Target: "/work/bench"},
		{Type: mount.TypeBind, Source: "/data", Target: "/data", ReadOnly: true},
	}
	if len(host.Mounts) != len(want) {
		t.Fatalf("mounts: got %+v", host.Mounts)
	}
	for i := range want {
		got := host.Mounts[i]
		if got.Type != want[i].Type || got.Source != want[i].Source || got.Target != want[i].Target || got.ReadOnly != want[i].ReadOnly {
			t.Errorf("mount %d: got %+v, want %+v", i, got, want[i])
		}
	}
}

func TestBuildConfigNoLimits(t *testing.T) {
	_, host := buildConfig(&RunOpts{Image: "alpine", Dir: "/w"})
	if host.NanoCPUs != 0 || host.Memory != 0 {
		t.Errorf("unexpected limits: cpu %d mem %d", host.NanoCPUs, host.Memory)
	}
	if host.Init == nil || !*host.Init {
		t.Error("expected init process")
	}
}
