package events_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finco/internal/events"
)

func TestMessage_RoundTrip(t *testing.T) {
	type payload struct {
		BillID string `json:"billId"`
	}

	msg, err := events.NewMessage("bill.paid", 7, payload{BillID: "b3"})
	require.NoError(t, err)

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	got, err := events.MessageFromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, "bill.paid", got.Name)
	assert.Equal(t, uint64(7), got.Sequence)
	assert.True(t, msg.Timestamp.Equal(got.Timestamp))
	assert.JSONEq(t, `{"billId":"b3"}`, string(got.Payload))
}

func TestNewMessage_Unmarshalable(t *testing.T) {
	_, err := events.NewMessage("bad", 1, make(chan int))
	assert.Error(t, err)
}

func TestMessageFromJSON_Invalid(t *testing.T) {
	type testCase struct {
		name string
		data string
	}

	tests := []testCase{
		{name: "Garbage", data: "not json"},
		{name: "WrongSequenceType", data: `{"name":"x","sequence":"one"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := events.MessageFromJSON([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestNop(t *testing.T) {
	var pub events.Publisher = events.Nop{}

	assert.NoError(t, pub.Publish(context.Background(), &events.Message{Name: "x"}))
	assert.NoError(t, pub.Close())
}
