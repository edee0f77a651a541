package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeClient struct {
	mu        sync.Mutex
	published []publishCall
	failures  int
}

type publishCall struct {
	topic   string
	qos     byte
	payload []byte
}

func (c *fakeClient) IsConnected() bool    { return true }
func (c *fakeClient) Connect() paho.Token  { return &fakeToken{} }
func (c *fakeClient) Disconnect(_ uint)    {}
func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures > 0 {
		c.failures--
		return &fakeToken{err: errors.New("broker unavailable")}
	}
	c.published = append(c.published, publishCall{topic: topic, qos: qos, payload: payload.([]byte)})
	return &fakeToken{}
}

func withFakeClient(t *testing.T, cli *fakeClient) {
	t.Helper()
	orig := newMQTTClient
	newMQTTClient = func(_ *paho.ClientOptions) pahoClient { return cli }
	t.Cleanup(func() { newMQTTClient = orig })
}

func TestMQTTNotifierPublishesRun(t *testing.T) {
	cli := &fakeClient{}
	withFakeClient(t, cli)

	n, err := NewMQTTNotifier(Config{Broker: "tcp://localhost:1883", ClientID: "test", Topic: "runs", QoS: 1})
	require.NoError(t, err)

	require.NoError(t, n.RunCompleted(context.Background(), "ev1", "log-1"))
	require.Len(t, cli.published, 1)
	assert.Equal(t, "runs", cli.published[0].topic)
	assert.Equal(t, byte(1), cli.published[0].qos)

	var msg struct {
		EventID string `json:"event_id"`
		LogID   string `json:"log_id"`
	}
	require.NoError(t, json.Unmarshal(cli.published[0].payload, &msg))
	assert.Equal(t, "ev1", msg.EventID)
	assert.Equal(t, "log-1", msg.LogID)
}

func TestMQTTNotifierRetriesOnFailure(t *testing.T) {
	cli := &fakeClient{failures: 2}
	withFakeClient(t, cli)

	n, err := NewMQTTNotifier(Config{Broker: "tcp://localhost:1883", ClientID: "test", BackoffMS: 1})
	require.NoError(t, err)

	require.NoError(t, n.RunCompleted(context.Background(), "ev1", "log-1"))
	assert.Len(t, cli.published, 1)
}

func TestMQTTNotifierGivesUpAfterRetries(t *testing.T) {
	cli := &fakeClient{failures: 10}
	withFakeClient(t, cli)

	n, err := NewMQTTNotifier(Config{Broker: "tcp://localhost:1883", ClientID: "test", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)

	err = n.RunCompleted(context.Background(), "ev1", "log-1")
	assert.Error(t, err)
	assert.Empty(t, cli.published)
}

func TestMQTTNotifierDefaultTopic(t *testing.T) {
	cli := &fakeClient{}
	withFakeClient(t, cli)

	n, err := NewMQTTNotifier(Config{Broker: "tcp://localhost:1883", ClientID: "test"})
	require.NoError(t, err)
	require.NoError(t, n.RunCompleted(context.Background(), "ev1", "log-1"))
	require.Len(t, cli.published, 1)
	assert.Equal(t, "revdist/runs", cli.published[0].topic)
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier()
	assert.NoError(t, n.RunCompleted(context.Background(), "ev1", "log-1"))
}
