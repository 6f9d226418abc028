package outbox_poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/bizdesk-posting-ledger/internal/config"
	"github.com/bizdesk-posting-ledger/internal/domain/ledger"
	"github.com/bizdesk-posting-ledger/internal/domain/outbox"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status outbox.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	args := m.Called(tx)
	return args.Get(0).(outbox.Repository)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testMessage(t *testing.T, id int64, attempts int) *outbox.Message {
	t.Helper()
	ref := ledger.Reference{Type: ledger.RefReceiptPayment, ID: uuid.NewString()}
	msg, err := outbox.NewMessage(ref, []*ledger.Line{
		{ID: uuid.New(), AccountID: uuid.New(), ReferenceType: ref.Type, ReferenceID: ref.ID},
	})
	require.NoError(t, err)
	msg.ID = id
	msg.Attempts = attempts
	return msg
}

func TestPoller_ProcessPendingMessages(t *testing.T) {
	logger := slog.Default()

	cfg := &config.OutboxConfig{
		PollingInterval:  time.Second,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}
	publisherCfg := &config.PublisherConfig{PoolSize: 4}

	tests := []struct {
		name          string
		setupMocks    func(repo *MockOutboxRepo, publisher *MockPublisher)
		expectedError string
	}{
		{
			name: "successful processing of pending messages",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockPublisher) {
				m1 := testMessage(t, 1, 0)
				m2 := testMessage(t, 2, 0)
				repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{m1, m2}, nil).Once()
				publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()
				repo.On("UpdateStatus", mock.Anything, int64(1), outbox.StatusProcessed).Return(nil).Once()
				repo.On("UpdateStatus", mock.Anything, int64(2), outbox.StatusProcessed).Return(nil).Once()
			},
		},
		{
			name: "error getting pending messages",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockPublisher) {
				repo.On("GetPending", mock.Anything, 10).Return(nil, errors.New("db error")).Once()
			},
			expectedError: "failed to get pending outbox messages",
		},
		{
			name: "no pending messages",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockPublisher) {
				repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{}, nil).Once()
			},
		},
		{
			name: "publish failure increments attempts",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockPublisher) {
				m1 := testMessage(t, 1, 0)
				repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{m1}, nil).Once()
				publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("publish error")).Once()
				repo.On("IncrementAttempts", mock.Anything, int64(1)).Return(nil).Once()
			},
		},
		{
			name: "max retry attempts parks the message",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockPublisher) {
				m3 := testMessage(t, 3, 2)
				repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{m3}, nil).Once()
				publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("publish error")).Once()
				repo.On("IncrementAttempts", mock.Anything, int64(3)).Return(nil).Once()
				repo.On("UpdateStatus", mock.Anything, int64(3), outbox.StatusFailedToPublish).Return(nil).Once()
			},
		},
		{
			name: "undecodable payload parked without publishing",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockPublisher) {
				bad := testMessage(t, 4, 0)
				bad.Payload = []byte("not json")
				repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{bad}, nil).Once()
				repo.On("UpdateStatus", mock.Anything, int64(4), outbox.StatusFailedToPublish).Return(nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockOutboxRepo{}
			publisher := &MockPublisher{}
			poller, err := NewPoller(cfg, publisherCfg, repo, publisher, logger)
			require.NoError(t, err)

			tt.setupMocks(repo, publisher)

			err = poller.processPendingMessages(context.Background())

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestPoller_Start(t *testing.T) {
	repo := &MockOutboxRepo{}
	publisher := &MockPublisher{}
	logger := slog.Default()

	cfg := &config.OutboxConfig{
		PollingInterval:  10 * time.Millisecond,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}
	publisherCfg := &config.PublisherConfig{PoolSize: 2}

	poller, err := NewPoller(cfg, publisherCfg, repo, publisher, logger)
	require.NoError(t, err)

	repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{}, nil).Maybe()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		poller.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}
