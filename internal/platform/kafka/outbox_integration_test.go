//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"rentwise/internal/platform/config"
	"rentwise/internal/platform/kafka"
	id "rentwise/pkg/domain"
	"rentwise/pkg/platform/audit"
	"rentwise/pkg/platform/audit/outbox"
	"rentwise/pkg/platform/audit/publishers/compliance"
	auditpostgres "rentwise/pkg/platform/audit/store/postgres"
	"rentwise/pkg/testutil/containers"
)

type OutboxRelaySuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	redpanda *containers.RedpandaContainer
	producer *kafka.Producer
	topic    string
}

func TestOutboxRelaySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(OutboxRelaySuite))
}

func (s *OutboxRelaySuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.redpanda = mgr.GetRedpanda(s.T())
}

func (s *OutboxRelaySuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "outbox"))

	s.topic = "rentwise.audit.test-" + uuid.NewString()
	producer, err := kafka.NewProducer(ctx, config.Kafka{
		Brokers:    []string{s.redpanda.Broker},
		AuditTopic: s.topic,
	})
	s.Require().NoError(err)
	s.Require().NoError(producer.EnsureTopic(ctx, 1, 1))
	s.producer = producer
}

func (s *OutboxRelaySuite) TearDownTest() {
	s.producer.Close()
}

func (s *OutboxRelaySuite) TestRelayPublishesCommittedEventsOnce() {
	ctx := context.Background()
	publisher := compliance.New(auditpostgres.New(s.postgres.DB))
	actor := id.UserID(uuid.New())
	depositID := uuid.NewString()

	for _, action := range []audit.AuditEvent{audit.EventDepositRequested, audit.EventDepositPaid, audit.EventDepositReturnProposed} {
		s.Require().NoError(publisher.Emit(ctx, audit.ComplianceEvent{
			UserID:        actor,
			AggregateType: "deposit",
			AggregateID:   depositID,
			Action:        action,
		}))
	}

	relay := outbox.NewRelay(s.postgres.DB, kafka.NewOutboxPublisher(s.producer), outbox.WithBatchSize(10))
	n, err := relay.RelayOnce(ctx)
	s.Require().NoError(err)
	s.Equal(3, n)

	n, err = relay.RelayOnce(ctx)
	s.Require().NoError(err)
	s.Zero(n)

	var unpublished int
	s.Require().NoError(s.postgres.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM outbox WHERE published_at IS NULL`).Scan(&unpublished))
	s.Zero(unpublished)

	records := s.consume(3)
	actions := make([]string, 0, len(records))
	for _, rec := range records {
		s.Equal(depositID, string(rec.Key))
		var payload map[string]any
		s.Require().NoError(json.Unmarshal(rec.Value, &payload))
		s.Equal("deposit", payload["aggregate_type"])
		s.Equal(actor.String(), payload["user_id"])
		actions = append(actions, payload["action"].(string))
		s.Equal(payload["action"], header(rec, kafka.HeaderEventType))
	}
	s.ElementsMatch([]string{"deposit_requested", "deposit_paid", "deposit_return_proposed"}, actions)
}

func (s *OutboxRelaySuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	relay := outbox.NewRelay(s.postgres.DB, kafka.NewOutboxPublisher(s.producer), outbox.WithInterval(20*time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(5 * time.Second):
		s.Fail("relay did not stop after cancel")
	}
}

func (s *OutboxRelaySuite) consume(want int) []*kgo.Record {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Broker),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var out []*kgo.Record
	for len(out) < want {
		fetches := client.PollFetches(ctx)
		if ctx.Err() != nil {
			s.FailNowf("timed out waiting for records", "got %d of %d", len(out), want)
		}
		s.Require().Empty(fetches.Errors())
		out = append(out, fetches.Records()...)
	}
	return out
}

func header(rec *kgo.Record, key string) string {
	for _, h := range rec.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
