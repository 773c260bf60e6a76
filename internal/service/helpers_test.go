package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/advisory"
	"github.com/spec-kit/support-desk/internal/clock"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/drafting"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/policy"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

var start = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

var (
	alice = domain.User{ID: "u-1", Name: "Alice", Email: "alice@example.com", Role: domain.RoleCustomer}
	bob   = domain.User{ID: "u-2", Name: "Bob", Email: "bob@example.com", Role: domain.RoleCustomer}
	smith = domain.User{ID: "a-1", Name: "Agent Smith", Email: "smith@example.com", Role: domain.RoleAgent}
	jones = domain.User{ID: "a-2", Name: "Agent Jones", Email: "jones@example.com", Role: domain.RoleAgent}
)

var (
	aliceView = policy.ViewerOf(&alice)
	bobView   = policy.ViewerOf(&bob)
	agentView = policy.ViewerOf(&smith)
)

type fixture struct {
	store      repository.Store
	clock      *clock.Fake
	dispatcher events.Dispatcher
	mu         sync.Mutex
	published  []events.Event
	directory  *DirectoryService
	tickets    *TicketService
	messages   *MessageService
	queries    *TicketQueryService
}

type fixtureOption func(*TicketDependencies)

func withAdvisor(client advisory.Client, timeout time.Duration) fixtureOption {
	return func(deps *TicketDependencies) {
		deps.Advisor = advisory.NewAdvisor(client, timeout, zap.NewNop(), nil)
		deps.AnalyzeOnCreate = true
	}
}

func openStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	db, err := persistence.OpenSQLite(config.SQLiteConfig{Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, persistence.RunSQLiteMigrations(context.Background(), db, zap.NewNop()))
	return repository.NewSQLiteStore(db)
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	return newFixtureWithStore(t, openStore(t), opts...)
}

func newFixtureWithStore(t *testing.T, store repository.Store, opts ...fixtureOption) *fixture {
	t.Helper()
	f := &fixture{
		store:      store,
		clock:      clock.NewFake(start),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	for _, typ := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketMessageAdded,
		events.EventTicketAnalyzed,
	} {
		f.dispatcher.Subscribe(typ, func(_ context.Context, e events.Event) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.published = append(f.published, e)
			return nil
		})
	}

	f.directory = NewDirectoryService(store, f.clock)
	_, err := f.directory.Seed(context.Background(), []domain.User{alice, bob, smith, jones})
	require.NoError(t, err)

	deps := TicketDependencies{Store: store, Dispatcher: f.dispatcher, Clock: f.clock, Logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&deps)
	}
	f.tickets = NewTicketService(deps)
	f.messages = NewMessageService(MessageDependencies{
		Store:      store,
		Toucher:    f.tickets,
		Dispatcher: f.dispatcher,
		Clock:      f.clock,
		Logger:     zap.NewNop(),
	})
	f.queries = NewTicketQueryService(store)
	return f
}

func (f *fixture) createTicket(t *testing.T, customerID, subject string) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.CreateTicket(context.Background(), TicketCreateInput{
		CustomerID:  customerID,
		Subject:     subject,
		Description: "details for " + subject,
	})
	require.NoError(t, err)
	return ticket
}

func (f *fixture) append(t *testing.T, ticketID, senderID, content string, internal bool) *domain.Message {
	t.Helper()
	msg, err := f.messages.AppendMessage(context.Background(), MessageAppendInput{
		TicketID:       ticketID,
		SenderID:       senderID,
		Content:        content,
		IsInternalNote: internal,
	})
	require.NoError(t, err)
	return msg
}

func (f *fixture) eventTypes() []events.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]events.EventType, 0, len(f.published))
	for _, e := range f.published {
		types = append(types, e.Type)
	}
	return types
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperrors.IsCode(err, code), "expected %s, got %v", code, err)
}

// failingStore breaks message inserts made inside transactions.
type failingStore struct {
	repository.Store
	err error
}

func (s failingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		repos.Messages = failingMessages{MessageRepository: repos.Messages, err: s.err}
		return fn(ctx, repos)
	})
}

type failingMessages struct {
	repository.MessageRepository
	err error
}

func (m failingMessages) Create(context.Context, *domain.Message) error {
	return m.err
}

var errDiskFull = errors.New("disk full")

type stubAnalyzer struct {
	result advisory.Analyzed
	err    error
	delay  time.Duration
}

func (s stubAnalyzer) Analyze(ctx context.Context, _ advisory.Request) (advisory.Analyzed, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return advisory.Analyzed{}, ctx.Err()
		}
	}
	return s.result, s.err
}

type stubDrafter struct {
	conversationID string
	message        string
	reply          string
}

func (s *stubDrafter) Draft(_ context.Context, conversationID, message string) drafting.Reply {
	s.conversationID = conversationID
	s.message = message
	return drafting.Reply{Text: s.reply, Generated: true}
}
