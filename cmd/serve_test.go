package cmd

import (
	"strings"
	"testing"
)

func TestServeCmdRejectsUnknownTransport(t *testing.T) {
	cmd := newServeCmd()
	cmd.SetArgs([]string{"--transport", "websocket"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("Expected error for unknown transport")
	}
	if !strings.Contains(err.Error(), "websocket") {
		t.Errorf("Error %q does not name the rejected transport", err)
	}
}

func TestServeCmdFlagDefaults(t *testing.T) {
	cmd := newServeCmd()

	tests := []struct {
		flag string
		want string
	}{
		{"transport", "stdio"},
		{"http-addr", ":8080"},
		{"metrics-addr", ":9090"},
		{"debug", "false"},
		{"metrics-enabled", "false"},
	}

	for _, tt := range tests {
		f := cmd.Flags().Lookup(tt.flag)
		if f == nil {
			t.Errorf("Flag %q is not defined", tt.flag)
			continue
		}
		if f.DefValue != tt.want {
			t.Errorf("Flag %q default = %q, want %q", tt.flag, f.DefValue, tt.want)
		}
	}
}
