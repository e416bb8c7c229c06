package main

import (
	"bytes"
	"os"
	"testing"

	"mshell/internal/plugin"
)

func TestPwdPlugin(t *testing.T) {
	var p plugin.Plugin = &Plugin

	dir := t.TempDir()
	old, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(old)

	var out bytes.Buffer
	if err := p.Execute(nil, &out); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if out.String() != wd+"\n" {
		t.Errorf("output = %q, want %q", out.String(), wd+"\n")
	}
	if err := p.Execute([]string{"x"}, &out); err == nil {
		t.Error("expected error for extra arguments")
	}
}
