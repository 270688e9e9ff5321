package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sethu45/social-network/internal/config"
	"github.com/sethu45/social-network/internal/logging"
)

func TestEmailService_ConsoleProvider(t *testing.T) {
	buf := &bytes.Buffer{}
	orig := logging.Default
	logging.Default = logging.New().SetOutput(buf).SetLevel(logging.LevelDebug)
	t.Cleanup(func() { logging.Default = orig })

	svc := NewEmailService(&config.EmailConfig{
		Provider:    "console",
		FromAddress: "noreply@socialnetwork.local",
		FromName:    "Social Network",
		BaseURL:     "http://localhost:8080",
	})

	err := svc.SendFriendRequestAccepted(context.Background(), "alice@example.com", "alice", "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "alice@example.com") {
		t.Fatalf("expected console output to mention recipient, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), "bob accepted your friend request") {
		t.Fatalf("expected subject in output, got %s", buf.String())
	}
}

func TestEmailService_ResendClientConfigured(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Provider: "resend", ResendAPIKey: "re_test"})
	if svc.client == nil {
		t.Fatal("expected resend client to be configured")
	}
}
