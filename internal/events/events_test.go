package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeToken is a completed mqtt.Token.
type fakeToken struct {
	err  error
	done chan struct{}
}

func newFakeToken(err error) *fakeToken {
	done := make(chan struct{})
	close(done)
	return &fakeToken{err: err, done: done}
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeClient records publishes. Only the methods the publisher uses do anything.
type fakeClient struct {
	mqtt.Client
	err          error
	sent         []published
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return newFakeToken(c.err)
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func TestMQTTPublisher_Publish(t *testing.T) {
	client := &fakeClient{}
	p := newMQTTPublisher(client, "walkroutes/")

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	err := p.Publish(context.Background(), Event{Type: RouteCreated, ID: "abc", Name: "Loop", At: at})
	require.NoError(t, err)
	require.Len(t, client.sent, 1)
	assert.Equal(t, "walkroutes/routes/created", client.sent[0].topic)
	assert.Equal(t, byte(1), client.sent[0].qos)

	var got Event
	require.NoError(t, json.Unmarshal(client.sent[0].payload, &got))
	assert.Equal(t, RouteCreated, got.Type)
	assert.Equal(t, "abc", got.ID)
	assert.True(t, at.Equal(got.At))

	p.Close()
	assert.True(t, client.disconnected)
}

func TestMQTTPublisher_PublishError(t *testing.T) {
	client := &fakeClient{err: errors.New("not connected")}
	p := newMQTTPublisher(client, "walkroutes")

	err := p.Publish(context.Background(), Event{Type: RouteDeleted, ID: "abc"})
	assert.EqualError(t, err, "not connected")
	assert.Equal(t, "walkroutes/routes/deleted", client.sent[0].topic)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: RouteCreated}))
	p.Close()
}
