package main

import "testing"

func TestParseArgs(t *testing.T) {
	opt, err := parseArgs([]string{"-c", "/etc/datacore/poller.yaml", "--once", "-d"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if opt.Config != "/etc/datacore/poller.yaml" || !opt.Once || !opt.Debug {
		t.Errorf("options = %+v", opt)
	}
}

func TestParseArgs_Defaults(t *testing.T) {
	opt, err := parseArgs(nil)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if opt.Config != "config.yaml" || opt.Once || opt.Version {
		t.Errorf("options = %+v", opt)
	}
}

func TestParseArgs_Unknown(t *testing.T) {
	if _, err := parseArgs([]string{"--nope"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}
