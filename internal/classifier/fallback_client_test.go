package classifier

import (
	"context"
	"errors"
	"testing"
)

func TestFallbackClientUsesPrimaryWhenHealthy(t *testing.T) {
	primary := &stubLLMClient{resp: LLMResponse{Text: "primario"}}
	secondary := &stubLLMClient{resp: LLMResponse{Text: "secundario"}}
	client := NewFallbackLLMClient(primary, secondary, nil)

	resp, err := client.Complete(context.Background(), LLMRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "primario" {
		t.Errorf("expected primary response, got %q", resp.Text)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary should not be called, got %d calls", secondary.calls)
	}
}

func TestFallbackClientRetriesSecondary(t *testing.T) {
	primary := &stubLLMClient{err: errors.New("throttled")}
	secondary := &stubLLMClient{resp: LLMResponse{Text: "secundario"}}
	client := NewFallbackLLMClient(primary, secondary, nil)

	resp, err := client.Complete(context.Background(), LLMRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "secundario" {
		t.Errorf("expected secondary response, got %q", resp.Text)
	}
}

func TestFallbackClientReturnsErrorWithoutSecondary(t *testing.T) {
	primary := &stubLLMClient{err: errors.New("down")}
	client := NewFallbackLLMClient(primary, nil, nil)

	if _, err := client.Complete(context.Background(), LLMRequest{}); err == nil {
		t.Fatal("expected error when primary fails and no secondary exists")
	}
}

func TestFallbackClientReturnsSecondaryError(t *testing.T) {
	primary := &stubLLMClient{err: errors.New("down")}
	secondary := &stubLLMClient{err: errors.New("also down")}
	client := NewFallbackLLMClient(primary, secondary, nil)

	_, err := client.Complete(context.Background(), LLMRequest{})
	if err == nil || err.Error() != "also down" {
		t.Fatalf("expected secondary error, got %v", err)
	}
}
