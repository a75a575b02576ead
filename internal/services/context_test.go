package services_test

import (
	"context"
	"testing"

	"chapterize/internal/services"
)

func TestStageContextRoundTrip(t *testing.T) {
	ctx := services.WithStage(context.Background(), "detect")
	stage, ok := services.StageFromContext(ctx)
	if !ok || stage != "detect" {
		t.Fatalf("expected stage detect, got %q ok=%v", stage, ok)
	}
	if _, ok := services.StageFromContext(context.Background()); ok {
		t.Fatal("expected no stage on bare context")
	}
	if ctx2 := services.WithStage(ctx, ""); ctx2 != ctx {
		t.Fatal("empty stage should not replace context")
	}
}

func TestRunIDContextRoundTrip(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-123")
	id, ok := services.RunIDFromContext(ctx)
	if !ok || id != "run-123" {
		t.Fatalf("expected run-123, got %q ok=%v", id, ok)
	}
	if _, ok := services.RunIDFromContext(context.Background()); ok {
		t.Fatal("expected no run id on bare context")
	}
}
