package repository

import (
	"context"
	"testing"
	"time"

	"homophily-study/internal/domain"
)

func newTestStore(t *testing.T) *CsvStore {
	t.Helper()
	store, err := NewCsvStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

func testParticipant(id string) domain.Participant {
	return domain.Participant{
		ID:        id,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Group:     domain.GroupA,
	}
}

func TestCsvParticipantCreateAndGet(t *testing.T) {
	repo := NewCsvParticipantRepository(newTestStore(t))
	ctx := context.Background()

	p := testParticipant("abc12345")
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != p.ID || got.Group != p.Group {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Fatalf("created_at mismatch: %v vs %v", got.CreatedAt, p.CreatedAt)
	}
	if got.CompletedAt != nil {
		t.Fatalf("new participant should not be completed")
	}
}

func TestCsvParticipantGetUnknown(t *testing.T) {
	repo := NewCsvParticipantRepository(newTestStore(t))
	if _, err := repo.GetByID(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCsvParticipantCount(t *testing.T) {
	repo := NewCsvParticipantRepository(newTestStore(t))
	ctx := context.Background()

	for i, id := range []string{"p1", "p2", "p3"} {
		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != int64(i) {
			t.Fatalf("expected count %d, got %d", i, count)
		}
		if err := repo.Create(ctx, testParticipant(id)); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
}

func TestCsvParticipantSaveProfile(t *testing.T) {
	repo := NewCsvParticipantRepository(newTestStore(t))
	ctx := context.Background()

	p := testParticipant("p1")
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	p.IsOutlier = true
	p.Age = "31"
	p.Gender = "male"
	p.Education = "master"
	p.Interests = "hiking, chess"
	p.CommunicationStyle = "direct"
	p.TIPI = map[string]int{"tipi_1": 6, "tipi_6": 2, "tipi_10": 3}
	p.BigFive = &domain.BigFive{Extraversion: 6.0, Agreeableness: 5.5, Conscientiousness: 4.0, Neuroticism: 3.0, Openness: 5.0}
	p.PersonaLabel = "O"
	p.Similarities = map[string]float64{"A": 0.8, "C": 0.7, "O": 0.9}

	if err := repo.SaveProfile(ctx, p); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsOutlier || got.Age != "31" || got.Education != "master" {
		t.Fatalf("profile fields not persisted: %+v", got)
	}
	if got.TIPI["tipi_1"] != 6 || got.TIPI["tipi_10"] != 3 {
		t.Fatalf("tipi answers not persisted: %+v", got.TIPI)
	}
	if _, ok := got.TIPI["tipi_2"]; ok {
		t.Fatalf("missing tipi item should stay missing")
	}
	if got.BigFive == nil || got.BigFive.Extraversion != 6.0 || got.BigFive.Neuroticism != 3.0 {
		t.Fatalf("big five not persisted: %+v", got.BigFive)
	}
	if got.PersonaLabel != "O" || got.Similarities["O"] != 0.9 {
		t.Fatalf("assignment fields not persisted: %+v", got)
	}
}

func TestCsvParticipantSaveProfileUnknown(t *testing.T) {
	repo := NewCsvParticipantRepository(newTestStore(t))
	p := testParticipant("ghost")
	if err := repo.SaveProfile(context.Background(), p); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCsvParticipantPreferenceRoundTrip(t *testing.T) {
	repo := NewCsvParticipantRepository(newTestStore(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testParticipant("p1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	reason := "more natural\nand more helpful"
	if err := repo.SavePreference(ctx, "p1", "bot_2", reason); err != nil {
		t.Fatalf("save preference: %v", err)
	}

	got, err := repo.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PreferredBot != "bot_2" {
		t.Fatalf("preferred bot not persisted: %+v", got)
	}
	if got.PreferenceReason != reason {
		t.Fatalf("newline reason round trip failed: %q", got.PreferenceReason)
	}
}

func TestCsvParticipantMarkCompleteOverwrites(t *testing.T) {
	repo := NewCsvParticipantRepository(newTestStore(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testParticipant("p1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	first := time.Now().UTC().Truncate(time.Millisecond)
	if err := repo.MarkComplete(ctx, "p1", first); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	second := first.Add(5 * time.Minute)
	if err := repo.MarkComplete(ctx, "p1", second); err != nil {
		t.Fatalf("second complete: %v", err)
	}

	got, err := repo.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(second) {
		t.Fatalf("expected overwritten completed_at %v, got %v", second, got.CompletedAt)
	}
}

func TestCsvParticipantUpdatePreservesOtherRows(t *testing.T) {
	repo := NewCsvParticipantRepository(newTestStore(t))
	ctx := context.Background()

	for _, id := range []string{"p1", "p2", "p3"} {
		if err := repo.Create(ctx, testParticipant(id)); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := repo.SavePreference(ctx, "p2", "bot_1", "x"); err != nil {
		t.Fatalf("save preference: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("rewrite lost rows: got %d", len(list))
	}
	if list[0].ID != "p1" || list[1].ID != "p2" || list[2].ID != "p3" {
		t.Fatalf("rewrite changed row order: %+v", list)
	}
	if list[1].PreferredBot != "bot_1" || list[0].PreferredBot != "" {
		t.Fatalf("update touched the wrong row")
	}
}

func TestCsvMessageAppendAndList(t *testing.T) {
	repo := NewCsvMessageRepository(newTestStore(t))
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	msgs := []domain.Message{
		{ParticipantID: "p1", Phase: 1, Role: domain.RoleUser, Content: "hola", BotType: domain.BotHighMatch, TopicID: "friends", CreatedAt: base},
		{ParticipantID: "p1", Phase: 1, Role: domain.RoleAssistant, Content: "hola!\nempecemos", BotType: domain.BotHighMatch, TopicID: "friends", Model: "gpt-4o", CreatedAt: base.Add(time.Second)},
		{ParticipantID: "p1", Phase: 2, Role: domain.RoleUser, Content: "segunda fase", BotType: domain.BotLowMatch, TopicID: "specialization", CreatedAt: base.Add(2 * time.Second)},
		{ParticipantID: "p2", Phase: 1, Role: domain.RoleUser, Content: "otro", BotType: domain.BotHighMatch, TopicID: "friends", CreatedAt: base.Add(3 * time.Second)},
	}
	for i, m := range msgs {
		if err := repo.Append(ctx, m); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	phase1, err := repo.ListByPhase(ctx, "p1", 1)
	if err != nil {
		t.Fatalf("list by phase: %v", err)
	}
	if len(phase1) != 2 {
		t.Fatalf("expected 2 phase-1 messages, got %d", len(phase1))
	}
	if phase1[0].Role != domain.RoleUser || phase1[1].Role != domain.RoleAssistant {
		t.Fatalf("insertion order not preserved: %+v", phase1)
	}
	if phase1[1].Content != "hola!\nempecemos" {
		t.Fatalf("newline content round trip failed: %q", phase1[1].Content)
	}
	if phase1[1].Model != "gpt-4o" {
		t.Fatalf("model not persisted: %+v", phase1[1])
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 messages total, got %d", len(all))
	}
}

func TestCsvMessageCountUserTurns(t *testing.T) {
	repo := NewCsvMessageRepository(newTestStore(t))
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		_ = repo.Append(ctx, domain.Message{ParticipantID: "p1", Phase: 1, Role: domain.RoleUser, Content: "u", CreatedAt: now})
		_ = repo.Append(ctx, domain.Message{ParticipantID: "p1", Phase: 1, Role: domain.RoleAssistant, Content: "a", CreatedAt: now})
	}
	_ = repo.Append(ctx, domain.Message{ParticipantID: "p1", Phase: 2, Role: domain.RoleUser, Content: "u", CreatedAt: now})

	count, err := repo.CountUserTurns(ctx, "p1", 1)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 user turns, got %d", count)
	}
}

func TestCsvRatingAppendAndList(t *testing.T) {
	repo := NewCsvRatingRepository(newTestStore(t))
	ctx := context.Background()

	rating := domain.Rating{
		ParticipantID: "p1",
		Phase:         1,
		BotType:       domain.BotHighMatch,
		TopicID:       "friends",
		Trust:         5,
		Likability:    6,
		Similarity:    4,
		Naturalness:   7,
		Satisfaction:  6,
		OpenResponse:  "felt easy to talk to\nwould chat again",
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := repo.Append(ctx, rating); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.Append(ctx, rating); err != nil {
		t.Fatalf("second append: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("each append should add a row, got %d", len(list))
	}
	got := list[0]
	if got.Trust != 5 || got.Naturalness != 7 || got.Satisfaction != 6 {
		t.Fatalf("scores round trip failed: %+v", got)
	}
	if got.OpenResponse != rating.OpenResponse {
		t.Fatalf("open response round trip failed: %q", got.OpenResponse)
	}
	if !got.CreatedAt.Equal(rating.CreatedAt) {
		t.Fatalf("created_at round trip failed: %v", got.CreatedAt)
	}
}

func TestCsvStoreReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	store, err := NewCsvStore(dir)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	repo := NewCsvParticipantRepository(store)
	if err := repo.Create(context.Background(), testParticipant("p1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	reopened, err := NewCsvStore(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	count, err := NewCsvParticipantRepository(reopened).Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("reopen must not truncate existing files, got count %d", count)
	}
}
