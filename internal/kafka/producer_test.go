package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gw-payment-engine/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvent() models.TransferEvent {
	return models.TransferEvent{
		TransactionID: "6f1d2c1e-0000-4000-8000-000000000001",
		Origin:        models.AccountRef{BankID: 0, AccountID: 7},
		Destination:   models.AccountRef{BankID: 1, AccountID: 8},
		Kind:          models.TransferKindInternational,
		Amount:        10000,
		FromCurrency:  "USD",
		ToCurrency:    "EUR",
		Fee:           100,
		Status:        "SUCCESSFUL",
		Timestamp:     time.Now(),
	}
}

func TestKafkaProducer_Publish_Success(t *testing.T) {
	sp := mocks.NewSyncProducer(t, NewConfig())
	event := testEvent()

	sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != event.TransactionID {
			return errors.New("unexpected key " + string(key))
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var got models.TransferEvent
		if err := json.Unmarshal(value, &got); err != nil {
			return err
		}
		if got.Amount != event.Amount || got.Origin != event.Origin {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := NewKafkaProducerFrom(sp, "transfer-events", testLogger())
	require.NoError(t, p.Publish(context.Background(), event))
	require.NoError(t, p.Close())
}

func TestKafkaProducer_Publish_Failure(t *testing.T) {
	sp := mocks.NewSyncProducer(t, NewConfig())
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaProducerFrom(sp, "transfer-events", testLogger())
	err := p.Publish(context.Background(), testEvent())

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestNoOpProducer(t *testing.T) {
	p := NewNoOpProducer(testLogger())
	assert.NoError(t, p.Publish(context.Background(), testEvent()))
	assert.NoError(t, p.Close())
}
