// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gitsync

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/papersync/lib/clock"
	"github.com/bureau-foundation/papersync/lib/git"
	"github.com/bureau-foundation/papersync/lib/remote"
)

var testAuthor = git.Author{Name: "Paper Bot", Email: "bot@test.local"}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git not available: %v", err)
	}
}

func testEnv(t *testing.T) []string {
	t.Helper()
	home := t.TempDir()
	return []string{
		"HOME=" + home,
		"XDG_CONFIG_HOME=" + filepath.Join(home, ".config"),
		"GIT_CONFIG_NOSYSTEM=1",
	}
}

func bareRemote(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "paper.git")
	if output, err := exec.Command("git", "init", "--bare", dir).CombinedOutput(); err != nil {
		t.Fatalf("git init --bare: %v\n%s", err, output)
	}
	return dir
}

func newEngine(t *testing.T) (*Engine, *clock.FakeClock) {
	t.Helper()
	fake := clock.Fake(time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC))
	return New(Config{
		Author: testAuthor,
		Env:    testEnv(t),
		Clock:  fake,
	}), fake
}

func contentDir(t *testing.T, files map[string]string) Snapshot {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return Snapshot{Dir: dir}
}

func remoteHead(t *testing.T, bare, branch string) string {
	t.Helper()
	output, err := exec.Command("git", "-C", bare, "rev-parse", "--verify", "--quiet", branch).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

func gitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()
	output, err := exec.Command("git", append([]string{"-C", dir}, args...)...).Output()
	if err != nil {
		t.Fatalf("git %v: %v", args, err)
	}
	return strings.TrimSpace(string(output))
}

func TestSync_NoRemoteConfigured(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine(t)
	snapshot := contentDir(t, map[string]string{"main.tex": "x"})

	result := engine.Sync(context.Background(), snapshot, remote.Endpoint{ProjectName: "paper"})
	if result.Outcome != NoRemoteConfigured {
		t.Fatalf("Outcome = %q, want %q", result.Outcome, NoRemoteConfigured)
	}
	if _, err := os.Stat(filepath.Join(snapshot.Dir, ".git")); !os.IsNotExist(err) {
		t.Error("working copy was initialized without a remote")
	}
}

func TestSync_FirstSyncThenNoop(t *testing.T) {
	requireGit(t)
	t.Parallel()

	engine, _ := newEngine(t)
	bare := bareRemote(t)
	snapshot := contentDir(t, map[string]string{
		"main.tex":       "\\documentclass{article}",
		"references.bib": "@article{a}",
	})
	endpoint := remote.Endpoint{ProjectName: "paper", GitURL: bare}

	first := engine.Sync(context.Background(), snapshot, endpoint)
	if first.Outcome != Success {
		t.Fatalf("first sync: %s", first)
	}
	if first.Noop {
		t.Error("first sync reported noop")
	}
	pushed := remoteHead(t, bare, "master")
	if pushed == "" || pushed != first.Commit {
		t.Fatalf("remote master = %q, want %q", pushed, first.Commit)
	}

	message := gitOutput(t, snapshot.Dir, "log", "-1", "--format=%s")
	if message != "Update 2026-03-14 09:26" {
		t.Errorf("commit message = %q", message)
	}
	author := gitOutput(t, snapshot.Dir, "log", "-1", "--format=%an <%ae>")
	if author != "Paper Bot <bot@test.local>" {
		t.Errorf("author = %q", author)
	}

	second := engine.Sync(context.Background(), snapshot, endpoint)
	if second.Outcome != Success {
		t.Fatalf("second sync: %s", second)
	}
	if !second.Noop {
		t.Error("second sync with no changes did not report noop")
	}
	if count := gitOutput(t, snapshot.Dir, "rev-list", "--count", "HEAD"); count != "1" {
		t.Errorf("commit count = %s, want 1", count)
	}
	if remoteHead(t, bare, "master") != pushed {
		t.Error("remote moved on a noop sync")
	}
}

func TestSync_ChangedContentCommitsAgain(t *testing.T) {
	requireGit(t)
	t.Parallel()

	engine, fake := newEngine(t)
	bare := bareRemote(t)
	snapshot := contentDir(t, map[string]string{"main.tex": "v1"})
	endpoint := remote.Endpoint{ProjectName: "paper", GitURL: bare}

	if result := engine.Sync(context.Background(), snapshot, endpoint); !result.OK() {
		t.Fatalf("first sync: %s", result)
	}

	fake.Advance(time.Hour)
	if err := os.WriteFile(filepath.Join(snapshot.Dir, "main.tex"), []byte("v2"), 0644); err != nil {
		t.Fatal(err)
	}
	result := engine.Sync(context.Background(), snapshot, endpoint)
	if !result.OK() || result.Noop {
		t.Fatalf("second sync: %s (noop=%v)", result, result.Noop)
	}
	if remoteHead(t, bare, "master") != result.Commit {
		t.Error("remote did not receive the new commit")
	}
	if message := gitOutput(t, snapshot.Dir, "log", "-1", "--format=%s"); message != "Update 2026-03-14 10:26" {
		t.Errorf("commit message = %q", message)
	}
}

func TestSync_RetriesEarlierFailedPush(t *testing.T) {
	requireGit(t)
	t.Parallel()

	engine, _ := newEngine(t)
	bare := bareRemote(t)
	snapshot := contentDir(t, map[string]string{"main.tex": "x"})
	endpoint := remote.Endpoint{ProjectName: "paper", GitURL: bare}

	// Commit locally without pushing, as if the push had failed.
	repo := git.NewRepository(snapshot.Dir, testEnv(t)...)
	ctx := context.Background()
	if err := repo.Init(ctx, "master"); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddRemote(ctx, "overleaf", bare); err != nil {
		t.Fatal(err)
	}
	if err := repo.StageAll(ctx); err != nil {
		t.Fatal(err)
	}
	if err := repo.Commit(ctx, "earlier", testAuthor); err != nil {
		t.Fatal(err)
	}

	result := engine.Sync(ctx, snapshot, endpoint)
	if !result.OK() || !result.Noop {
		t.Fatalf("result = %s (noop=%v), want noop success", result, result.Noop)
	}
	if remoteHead(t, bare, "master") == "" {
		t.Error("pending commit was not pushed")
	}
}

func TestSync_RemoteMismatch(t *testing.T) {
	requireGit(t)
	t.Parallel()

	engine, _ := newEngine(t)
	original := bareRemote(t)
	other := bareRemote(t)
	snapshot := contentDir(t, map[string]string{"main.tex": "x"})

	if result := engine.Sync(context.Background(), snapshot, remote.Endpoint{ProjectName: "paper", GitURL: original}); !result.OK() {
		t.Fatalf("first sync: %s", result)
	}

	result := engine.Sync(context.Background(), snapshot, remote.Endpoint{ProjectName: "paper", GitURL: other})
	if result.Outcome != RemoteMismatch {
		t.Fatalf("Outcome = %q, want %q", result.Outcome, RemoteMismatch)
	}
	if !strings.Contains(result.Message, original) {
		t.Errorf("Message %q does not name the configured remote", result.Message)
	}
	if url := gitOutput(t, snapshot.Dir, "remote", "get-url", "overleaf"); url != original {
		t.Errorf("remote was repointed to %q", url)
	}
	if remoteHead(t, other, "master") != "" {
		t.Error("mismatched remote received a push")
	}
}

func TestSync_PushRejected(t *testing.T) {
	requireGit(t)
	t.Parallel()

	bare := bareRemote(t)
	endpoint := remote.Endpoint{ProjectName: "paper", GitURL: bare}

	// A first writer pushes unrelated history.
	writer, _ := newEngine(t)
	if result := writer.Sync(context.Background(), contentDir(t, map[string]string{"a.tex": "a"}), endpoint); !result.OK() {
		t.Fatalf("writer sync: %s", result)
	}

	engine, _ := newEngine(t)
	result := engine.Sync(context.Background(), contentDir(t, map[string]string{"b.tex": "b"}), endpoint)
	if result.Outcome != PushRejected {
		t.Fatalf("Outcome = %q (%s), want %q", result.Outcome, result.Message, PushRejected)
	}
}

func TestSync_UnreachableRemote(t *testing.T) {
	requireGit(t)
	t.Parallel()

	engine, _ := newEngine(t)
	missing := filepath.Join(t.TempDir(), "does-not-exist.git")
	result := engine.Sync(context.Background(), contentDir(t, map[string]string{"main.tex": "x"}),
		remote.Endpoint{ProjectName: "paper", GitURL: missing})
	if result.Outcome != TransportError {
		t.Fatalf("Outcome = %q (%s), want %q", result.Outcome, result.Message, TransportError)
	}
}

func TestSync_EmptySnapshot(t *testing.T) {
	requireGit(t)
	t.Parallel()

	engine, _ := newEngine(t)
	bare := bareRemote(t)
	result := engine.Sync(context.Background(), contentDir(t, nil), remote.Endpoint{ProjectName: "paper", GitURL: bare})
	if !result.OK() || !result.Noop {
		t.Fatalf("result = %s (noop=%v), want noop success", result, result.Noop)
	}
	if remoteHead(t, bare, "master") != "" {
		t.Error("empty snapshot produced a remote branch")
	}
}

func TestSync_MissingDirectory(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine(t)
	result := engine.Sync(context.Background(),
		Snapshot{Dir: filepath.Join(t.TempDir(), "gone")},
		remote.Endpoint{ProjectName: "paper", GitURL: "/tmp/x.git"})
	if result.Outcome != WorkingCopyFailed {
		t.Fatalf("Outcome = %q, want %q", result.Outcome, WorkingCopyFailed)
	}
}

func TestClassifyPush(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"rejected", &git.CommandError{ExitCode: 1, Stderr: "! [rejected] master -> master (fetch first)"}, PushRejected},
		{"auth", &git.CommandError{ExitCode: 128, Stderr: "remote: Invalid username or password."}, PushRejected},
		{"dns", &git.CommandError{ExitCode: 128, Stderr: "fatal: unable to access 'https://git.example/': Could not resolve host"}, TransportError},
		{"not started", &git.CommandError{ExitCode: -1, Stderr: ""}, TransportError},
		{"timeout", &git.CommandError{ExitCode: -1, Err: context.DeadlineExceeded}, TransportError},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := classifyPush(test.err); got != test.want {
				t.Errorf("classifyPush = %q, want %q", got, test.want)
			}
		})
	}
}
