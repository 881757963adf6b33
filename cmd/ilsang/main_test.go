package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// binPath is built once by TestMain.
var binPath string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "ilsang-e2e")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	binPath = filepath.Join(dir, "ilsang")
	if runtime.GOOS == "windows" {
		binPath += ".exe"
	}
	build := exec.Command("go", "build", "-o", binPath, ".")
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build CLI: %v\n", err)
		os.RemoveAll(dir)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// isolatedEnv points HOME, the database and the keyring lookup away from the
// real user.
func isolatedEnv(t *testing.T) []string {
	t.Helper()
	home := t.TempDir()
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "HOME=") || strings.HasPrefix(e, "ILSANG_") || strings.HasPrefix(e, "XDG_CONFIG_HOME=") {
			continue
		}
		env = append(env, e)
	}
	return append(env,
		"HOME="+home,
		"XDG_CONFIG_HOME="+filepath.Join(home, ".config"),
		"ILSANG_CONFIG="+filepath.Join(home, "data", "ilsang.db"),
		"ILSANG_CONFIG_FILE="+filepath.Join(home, "config.yaml"),
	)
}

func run(t *testing.T, env []string, args ...string) string {
	t.Helper()
	out, err := runErr(env, args...)
	if err != nil {
		t.Fatalf("ilsang %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func runErr(env []string, args ...string) (string, error) {
	cmd := exec.Command(binPath, args...)
	cmd.Env = env
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.String(), err
}

func TestEndToEndWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}
	env := isolatedEnv(t)

	out := run(t, env, "init")
	if !strings.Contains(out, "Initialized ilsang storage") {
		t.Errorf("init output = %q", out)
	}

	run(t, env, "settings", "--timezone=Asia/Seoul")

	out = run(t, env, "routine", "add", "약 먹기", "--cycle", "매일", "--remind", "08:00", "-t", "비타민", "-t", "유산균")
	if !strings.Contains(out, "✓ Added routine: 약 먹기") {
		t.Errorf("add output = %q", out)
	}

	out = run(t, env, "routine", "today")
	if !strings.Contains(out, "약 먹기") {
		t.Errorf("today output = %q", out)
	}

	run(t, env, "routine", "done", "약 먹기")
	out = run(t, env, "routine", "stats", "약 먹기")
	if !strings.Contains(out, "Completion:") {
		t.Errorf("stats output = %q", out)
	}

	out = run(t, env, "cycle", "매달 마지막주 금요일", "-n", "3")
	if !strings.Contains(out, "BYDAY=-1FR") {
		t.Errorf("cycle output = %q", out)
	}

	if out, err := runErr(env, "routine", "add", "격주", "--cycle", "격주 수요일"); err == nil {
		t.Errorf("invalid cycle accepted: %q", out)
	} else if !strings.Contains(out, "Hint: supported cycles") {
		t.Errorf("invalid cycle output missing hint: %q", out)
	}

	out = run(t, env, "export", "ics")
	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "RRULE:FREQ=DAILY") {
		t.Errorf("export output = %q", out)
	}

	run(t, env, "diary", "add", "오늘은 조용한 하루", "--mood", "🙂")
	out = run(t, env, "diary")
	if !strings.Contains(out, "오늘은 조용한 하루") {
		t.Errorf("diary output = %q", out)
	}

	out = run(t, env, "backup", "create")
	if !strings.Contains(out, "✓ Backup created") {
		t.Errorf("backup output = %q", out)
	}

	out = run(t, env, "doctor")
	if !strings.Contains(out, "All diagnostics passed!") {
		t.Errorf("doctor output = %q", out)
	}
}

func TestConfigFileDefaults(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}
	env := isolatedEnv(t)
	run(t, env, "init", "--no-config-file")

	var cfgPath string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "ILSANG_CONFIG_FILE="); ok {
			cfgPath = v
		}
	}
	if err := os.WriteFile(cfgPath, []byte("routine:\n  agenda:\n    days: 2\n"), 0600); err != nil {
		t.Fatal(err)
	}

	run(t, env, "routine", "add", "물주기", "--cycle", "매일")
	out := run(t, env, "routine", "agenda")
	if n := strings.Count(out, "물주기"); n != 2 {
		t.Errorf("agenda with days=2 from config listed %d days:\n%s", n, out)
	}
}

func TestStoreNotInitialized(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}
	out, err := runErr(isolatedEnv(t), "routine", "list")
	if err == nil {
		t.Fatalf("expected failure before init, got %q", out)
	}
	if !strings.Contains(out, "run 'ilsang init' first") {
		t.Errorf("output = %q", out)
	}
}
