// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether RunSilent succeeds
	silentCalls   []string
	runPipedFunc  func(name string, args []string, stdout io.Writer) error
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	m.silentCalls = append(m.silentCalls, key)
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunPiped(name string, args []string, stdout io.Writer) error {
	if m.runPipedFunc != nil {
		return m.runPipedFunc(name, args, stdout)
	}
	return nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name: "docker available",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true},
				runnableCmds:  map[string]bool{"docker info": true},
			},
			wantName: "docker",
		},
		{
			name: "podman fallback when docker missing",
			exec: &mockExecutor{
				availableBins: map[string]bool{"podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "neither available",
			exec: &mockExecutor{
				availableBins: map[string]bool{},
				runnableCmds:  map[string]bool{},
			},
			wantErr: true,
		},
		{
			name: "docker on PATH but info fails, podman works",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "both available, docker preferred",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"docker info": true, "podman info": true},
			},
			wantName: "docker",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(tt.exec)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "no container runtime available") {
					t.Errorf("error should mention no runtime available, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rt.Name() != tt.wantName {
				t.Errorf("got runtime %q, want %q", rt.Name(), tt.wantName)
			}
		})
	}
}

func TestImageExists(t *testing.T) {
	tests := []struct {
		name    string
		mkRT    func(*mockExecutor) Runtime
		image   string
		cmds    map[string]bool
		wantErr bool
	}{
		{
			name:  "docker image exists",
			mkRT:  func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			image: "lfoppiano/grobid:0.8.0",
			cmds:  map[string]bool{"docker image inspect lfoppiano/grobid:0.8.0": true},
		},
		{
			name:    "docker image not found",
			mkRT:    func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			image:   "lfoppiano/grobid:0.8.0",
			cmds:    map[string]bool{},
			wantErr: true,
		},
		{
			name:  "podman image exists",
			mkRT:  func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			image: "lfoppiano/grobid:0.8.0",
			cmds:  map[string]bool{"podman image exists lfoppiano/grobid:0.8.0": true},
		},
		{
			name:    "podman image not found",
			mkRT:    func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			image:   "lfoppiano/grobid:0.8.0",
			cmds:    map[string]bool{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{runnableCmds: tt.cmds}
			rt := tt.mkRT(exec)
			err := rt.ImageExists(tt.image)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.image) {
					t.Errorf("error should mention image name, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestStartService(t *testing.T) {
	want := "docker run --rm -d --name matex-grobid -p 8070:8070 lfoppiano/grobid:0.8.0"
	exec := &mockExecutor{runnableCmds: map[string]bool{want: true}}
	rt := newDockerRuntime(exec)

	if err := rt.StartService("lfoppiano/grobid:0.8.0", "matex-grobid", 8070, 8070); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exec.silentCalls) != 1 || exec.silentCalls[0] != want {
		t.Errorf("calls = %v, want [%q]", exec.silentCalls, want)
	}
}

func TestStartServiceFailure(t *testing.T) {
	exec := &mockExecutor{runnableCmds: map[string]bool{}}
	rt := newDockerRuntime(exec)

	err := rt.StartService("lfoppiano/grobid:0.8.0", "matex-grobid", 8070, 8070)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "matex-grobid") {
		t.Errorf("error should mention the container name, got: %v", err)
	}
}

func TestStopService(t *testing.T) {
	exec := &mockExecutor{runnableCmds: map[string]bool{"podman stop matex-grobid": true}}
	rt := newPodmanRuntime(exec)

	if err := rt.StopService("matex-grobid"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := rt.StopService("missing"); err == nil {
		t.Error("expected error for unknown container")
	}
}

func TestLogs(t *testing.T) {
	exec := &mockExecutor{
		runPipedFunc: func(name string, args []string, stdout io.Writer) error {
			if name != "docker" {
				return errors.New("expected docker binary")
			}
			if len(args) != 2 || args[0] != "logs" || args[1] != "matex-grobid" {
				return errors.New("unexpected args")
			}
			_, _ = stdout.Write([]byte("GROBID started"))
			return nil
		},
	}
	rt := newDockerRuntime(exec)

	var out bytes.Buffer
	if err := rt.Logs("matex-grobid", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "GROBID started" {
		t.Errorf("logs = %q", out.String())
	}
}

func TestRuntimeName(t *testing.T) {
	exec := &mockExecutor{}
	docker := newDockerRuntime(exec)
	if docker.Name() != "docker" {
		t.Errorf("docker runtime name = %q, want %q", docker.Name(), "docker")
	}
	podman := newPodmanRuntime(exec)
	if podman.Name() != "podman" {
		t.Errorf("podman runtime name = %q, want %q", podman.Name(), "podman")
	}
}
