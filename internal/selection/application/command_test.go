package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/wyfcoding/optionselector/internal/selection/domain"
)

type fakeRepo struct {
	saved   []*domain.SelectionRecord
	saveErr error
}

// WithTx 模拟事务回滚：fn 返回错误时恢复保存前的状态
func (f *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := len(f.saved)
	if err := fn(ctx); err != nil {
		f.saved = f.saved[:snapshot]
		return err
	}
	return nil
}

func (f *fakeRepo) Save(_ context.Context, record *domain.SelectionRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, record)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*domain.SelectionRecord, error) {
	for _, r := range f.saved {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetLatest(_ context.Context, symbol string) (*domain.SelectionRecord, error) {
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].Symbol == symbol {
			return f.saved[i], nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) List(_ context.Context, symbol string, limit, offset int) ([]*domain.SelectionRecord, int64, error) {
	var matched []*domain.SelectionRecord
	for _, r := range f.saved {
		if r.Symbol == symbol {
			matched = append(matched, r)
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

type fakeCache struct {
	latest map[string]*domain.SelectionRecord
	setErr error
	getErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{latest: make(map[string]*domain.SelectionRecord)}
}

func (f *fakeCache) SetLatest(_ context.Context, record *domain.SelectionRecord) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.latest[record.Symbol] = record
	return nil
}

func (f *fakeCache) GetLatest(_ context.Context, symbol string) (*domain.SelectionRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.latest[symbol], nil
}

type fakePublisher struct {
	completed []domain.SelectionCompletedEvent
	rejected  []domain.SelectionRejectedEvent
	err       error
}

func (f *fakePublisher) PublishSelectionCompleted(_ context.Context, event domain.SelectionCompletedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.completed = append(f.completed, event)
	return nil
}

func (f *fakePublisher) PublishSelectionRejected(_ context.Context, event domain.SelectionRejectedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.rejected = append(f.rejected, event)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEngine(t *testing.T) *domain.Engine {
	t.Helper()
	engine, err := domain.NewEngine(domain.DefaultEngineConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func bullishCommand() RunSelectionCommand {
	return RunSelectionCommand{
		Symbol:         "NIFTY",
		SpotPrice:      26178.70,
		Bias:           "BULLISH",
		StrikeInterval: 50,
		DaysToExpiry:   2.0,
		MinDelta:       0.05,
		MaxDelta:       0.95,
		MinGamma:       0.0001,
		PreferATM:      true,
	}
}

func TestRunSelectionPersistsAndPublishes(t *testing.T) {
	repo := &fakeRepo{}
	cache := newFakeCache()
	publisher := &fakePublisher{}
	svc := NewCommandService(testEngine(t), repo, cache, publisher, nil, testLogger())

	dto, err := svc.RunSelection(context.Background(), bullishCommand())
	if err != nil {
		t.Fatalf("RunSelection: %v", err)
	}

	if dto.ID == "" {
		t.Error("dto must carry a generated id")
	}
	if dto.EvaluatedAt.IsZero() {
		t.Error("dto must carry an evaluation timestamp")
	}
	if dto.Best == nil || dto.Best.Candidate.Strike != 26200 {
		t.Fatalf("expected best 26200, got %+v", dto.Best)
	}

	if len(repo.saved) != 1 {
		t.Fatalf("expected 1 saved record, got %d", len(repo.saved))
	}
	if repo.saved[0].ID != dto.ID {
		t.Errorf("saved record id mismatch: %s vs %s", repo.saved[0].ID, dto.ID)
	}

	if cached := cache.latest["NIFTY"]; cached == nil || cached.ID != dto.ID {
		t.Error("latest selection must be cached under its symbol")
	}

	if len(publisher.completed) != 1 || len(publisher.rejected) != 0 {
		t.Fatalf("expected exactly one completed event, got %d/%d",
			len(publisher.completed), len(publisher.rejected))
	}
	event := publisher.completed[0]
	if event.SelectionID != dto.ID || event.Strike != 26200 || event.OptionType != domain.OptionTypeCall {
		t.Errorf("unexpected completed event: %+v", event)
	}
}

func TestRunSelectionNoCandidatePublishesRejected(t *testing.T) {
	repo := &fakeRepo{}
	publisher := &fakePublisher{}
	svc := NewCommandService(testEngine(t), repo, nil, publisher, nil, testLogger())

	cmd := bullishCommand()
	cmd.Bias = "NEUTRAL"
	dto, err := svc.RunSelection(context.Background(), cmd)
	if err != nil {
		t.Fatalf("RunSelection: %v", err)
	}

	if !dto.NoCandidate || dto.Reason != domain.ReasonNoDirectionalBias {
		t.Fatalf("expected no-candidate outcome, got %+v", dto)
	}
	// Even "no trade" outcomes are persisted for audit.
	if len(repo.saved) != 1 {
		t.Fatalf("no-candidate outcome must still be persisted, saved=%d", len(repo.saved))
	}
	if len(publisher.rejected) != 1 || len(publisher.completed) != 0 {
		t.Fatalf("expected exactly one rejected event, got %d/%d",
			len(publisher.rejected), len(publisher.completed))
	}
	if publisher.rejected[0].Reason != domain.ReasonNoDirectionalBias {
		t.Errorf("unexpected rejection reason: %q", publisher.rejected[0].Reason)
	}
}

func TestRunSelectionInvalidRequest(t *testing.T) {
	repo := &fakeRepo{}
	publisher := &fakePublisher{}
	svc := NewCommandService(testEngine(t), repo, nil, publisher, nil, testLogger())

	cmd := bullishCommand()
	cmd.SpotPrice = -1
	if _, err := svc.RunSelection(context.Background(), cmd); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	if len(repo.saved) != 0 || len(publisher.completed) != 0 {
		t.Error("nothing should be persisted or published on validation failure")
	}
}

func TestRunSelectionRepoFailure(t *testing.T) {
	repoErr := errors.New("db down")
	repo := &fakeRepo{saveErr: repoErr}
	publisher := &fakePublisher{}
	svc := NewCommandService(testEngine(t), repo, nil, publisher, nil, testLogger())

	if _, err := svc.RunSelection(context.Background(), bullishCommand()); !errors.Is(err, repoErr) {
		t.Fatalf("expected repo error to propagate, got %v", err)
	}
	if len(publisher.completed) != 0 {
		t.Error("no event should be published when persistence fails")
	}
}

func TestRunSelectionCacheFailureIsNonFatal(t *testing.T) {
	repo := &fakeRepo{}
	cache := newFakeCache()
	cache.setErr = errors.New("redis down")
	svc := NewCommandService(testEngine(t), repo, cache, &fakePublisher{}, nil, testLogger())

	if _, err := svc.RunSelection(context.Background(), bullishCommand()); err != nil {
		t.Fatalf("cache failure must not fail the call: %v", err)
	}
	if len(repo.saved) != 1 {
		t.Error("record should still be persisted")
	}
}

func TestRunSelectionOutboxFailureRollsBack(t *testing.T) {
	outboxErr := errors.New("outbox full")
	repo := &fakeRepo{}
	publisher := &fakePublisher{err: outboxErr}
	svc := NewCommandService(testEngine(t), repo, nil, publisher, nil, testLogger())

	if _, err := svc.RunSelection(context.Background(), bullishCommand()); !errors.Is(err, outboxErr) {
		t.Fatalf("expected outbox error to propagate, got %v", err)
	}
	// Record and event share one transaction: a failed outbox insert
	// must not leave an orphaned history row behind.
	if len(repo.saved) != 0 {
		t.Errorf("expected rollback, found %d saved records", len(repo.saved))
	}
}
