package nats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterSubject(t *testing.T) {
	assert.Equal(t, "deposits.*", FilterSubject(""))
	assert.Equal(t, "deposits.abc", FilterSubject("abc"))
	assert.Equal(t, (&DepositEvent{Validator: "abc"}).Subject(), FilterSubject("abc"))
}

func TestDecodeDepositEvent(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{
			name: "valid",
			data: `{"signature":"sig","validator":"val","lamports":1500000000,"bump":254}`,
		},
		{
			name:    "not json",
			data:    `deposit`,
			wantErr: true,
		},
		{
			name:    "missing signature",
			data:    `{"validator":"val"}`,
			wantErr: true,
		},
		{
			name:    "missing validator",
			data:    `{"signature":"sig"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := DecodeDepositEvent([]byte(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, event)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "sig", event.Signature)
			assert.Equal(t, uint64(1_500_000_000), event.Lamports)
			assert.Equal(t, uint8(254), event.Bump)
		})
	}
}

func TestMockSubscriber(t *testing.T) {
	m := NewMockSubscriber(
		&DepositEvent{Signature: "a", Validator: "v1"},
		&DepositEvent{Signature: "b", Validator: "v2"},
		&DepositEvent{Signature: "c", Validator: "v1"},
	)

	t.Run("filters by validator and stops on request", func(t *testing.T) {
		var got []string
		err := m.Subscribe(context.Background(), SubscribeOptions{Validator: "v1"}, func(e *DepositEvent) error {
			got = append(got, e.Signature)
			if len(got) == 2 {
				return ErrStopSubscription
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, got)
	})

	t.Run("handler error is returned", func(t *testing.T) {
		err := m.Subscribe(context.Background(), SubscribeOptions{}, func(*DepositEvent) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("returns when context ends", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		count := 0
		err := m.Subscribe(ctx, SubscribeOptions{Durable: "cli"}, func(*DepositEvent) error {
			count++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	subs := m.GetSubscriptions()
	require.Len(t, subs, 3)
	assert.Equal(t, "cli", subs[2].Durable)

	require.NoError(t, m.Close())
	assert.True(t, m.IsClosed())
}
