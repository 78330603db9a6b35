package bot

import "testing"

func TestNewOpenRouterClient(t *testing.T) {
	if _, err := NewOpenRouterClient("", "model", ""); err == nil {
		t.Fatalf("Expected missing api key to fail")
	}
	if _, err := NewOpenRouterClient("sk-test", "", ""); err == nil {
		t.Fatalf("Expected missing model to fail")
	}
	client, err := NewOpenRouterClient("sk-test", "test-model", "")
	if err != nil {
		t.Fatalf("NewOpenRouterClient failed: %v", err)
	}
	if client.model != "test-model" {
		t.Errorf("model = %q", client.model)
	}
}
