package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/assessment-randomizer/internal/events"
	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
)

func TestServiceManagerLifecycle(t *testing.T) {
	logger := discardLogger()
	repo := newFakeRepository()
	sm := NewServiceManager(ServiceManagerConfig{
		Repo:      repo,
		Publisher: events.NewMockEventPublisher(logger),
		Logger:    logger,
	})
	ctx := context.Background()

	if err := sm.HealthCheck(ctx); err == nil {
		t.Fatal("HealthCheck() before Initialize succeeded")
	}
	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}
	if err := sm.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}

	test, err := sm.Test().CreateTest(ctx, &models.TestCreateRequest{Title: "Smoke"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sm.Test().AddQuestion(ctx, test.ID, &models.QuestionCreateRequest{Text: "1+1", Type: models.Numeric, CorrectAnswer: "2", Marks: 1}); err != nil {
		t.Fatal(err)
	}
	paper, err := sm.Attempt().Start(ctx, &models.AttemptStartRequest{TestID: test.ID}, "cand-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(paper.Questions) != 1 {
		t.Fatalf("paper = %+v", paper)
	}
	if _, err := sm.Diagnostics().CollisionReport(ctx, test.ID, []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}

	if err := sm.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := sm.HealthCheck(ctx); err == nil {
		t.Fatal("HealthCheck() after Shutdown succeeded")
	}
}

func TestServiceManagerRequiresCollaborators(t *testing.T) {
	if err := NewServiceManager(ServiceManagerConfig{}).Initialize(context.Background()); err == nil {
		t.Fatal("Initialize() without repository succeeded")
	}
}
