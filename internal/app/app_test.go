package app

import "testing"

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"serve", "setup"} {
		if !names[want] {
			t.Errorf("missing %q command", want)
		}
	}
}

func TestServeRejectsMissingClientCredentials(t *testing.T) {
	// No google.client_id/client_secret configured in tests, so serve must
	// fail fast before touching the network or the listener.
	err := serveCmd.RunE(serveCmd, nil)
	if err == nil {
		t.Fatal("serve succeeded without client credentials")
	}
}
