package homeeasy

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Topic layout on the vendor gateway broker. Devices publish their full
// state record on the status topic and accept full records on the command
// topic; an empty publish on the query topic makes the device re-publish
// its status.
const (
	statusTopicPrefix = "dev/status/010/"
	cmdTopicPrefix    = "dev/cmd/010/"
	queryTopicPrefix  = "dev/query/010/"
)

// DefaultBrokerURL is the vendor cloud broker the devices are paired with.
const DefaultBrokerURL = "tcp://91.196.132.126:1883"

// StatusHandler receives decoded state pushes for a device. It is invoked
// from the MQTT receive goroutine.
type StatusHandler func(mac string, state DeviceState)

type Config struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
	QoS       byte
}

// Lib speaks the Home Easy gateway protocol: connection management,
// status subscription and the state send/query operations. One Lib serves
// one bridge process; per-device routing is keyed by MAC.
type Lib struct {
	cfg Config

	mu       sync.Mutex
	client   mqtt.Client
	handlers map[string]StatusHandler
}

func NewLib(cfg Config) *Lib {
	if cfg.BrokerURL == "" {
		cfg.BrokerURL = DefaultBrokerURL
	}
	if cfg.ClientID == "" {
		cfg.ClientID = fmt.Sprintf("easybridge-%d", time.Now().UnixNano())
	}
	return &Lib{cfg: cfg, handlers: make(map[string]StatusHandler)}
}

func (l *Lib) Connect() error {
	opts := mqtt.NewClientOptions().
		AddBroker(l.cfg.BrokerURL).
		SetClientID(l.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second)

	if l.cfg.Username != "" {
		opts.SetUsername(l.cfg.Username)
		opts.SetPassword(l.cfg.Password)
	}

	// Re-subscribe for every registered device on (re)connect.
	opts.OnConnect = func(cl mqtt.Client) {
		l.mu.Lock()
		macs := make([]string, 0, len(l.handlers))
		for mac := range l.handlers {
			macs = append(macs, mac)
		}
		l.mu.Unlock()

		for _, mac := range macs {
			tok := cl.Subscribe(statusTopicPrefix+mac, l.cfg.QoS, l.onStatus)
			tok.Wait()
			if err := tok.Error(); err != nil {
				log.WithField("mac", mac).WithError(err).Warn("status subscribe failed")
			}
		}
	}

	l.mu.Lock()
	l.client = mqtt.NewClient(opts)
	client := l.client
	l.mu.Unlock()

	tok := client.Connect()
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("homeeasy connect: %w", err)
	}
	return nil
}

func (l *Lib) Disconnect() {
	l.mu.Lock()
	client := l.client
	l.mu.Unlock()
	if client != nil {
		client.Disconnect(250)
	}
}

// RequestStatus registers h as the push handler for mac, subscribes to the
// device's status topic and asks the device to publish its current state.
// All later pushes for mac, solicited or not, arrive through h.
func (l *Lib) RequestStatus(mac string, h StatusHandler) error {
	l.mu.Lock()
	l.handlers[mac] = h
	client := l.client
	l.mu.Unlock()

	if client == nil {
		return ErrNotConnected
	}

	tok := client.Subscribe(statusTopicPrefix+mac, l.cfg.QoS, l.onStatus)
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("homeeasy subscribe %s: %w", mac, err)
	}

	client.Publish(queryTopicPrefix+mac, l.cfg.QoS, false, []byte{})
	return nil
}

// RequestStatusAsync publishes a status query for mac and waits until the
// query is handed to the broker or ctx expires. The reply, if the device
// answers at all, is delivered through the handler registered with
// RequestStatus.
func (l *Lib) RequestStatusAsync(ctx context.Context, mac string) error {
	l.mu.Lock()
	client := l.client
	l.mu.Unlock()

	if client == nil {
		return ErrNotConnected
	}

	tok := client.Publish(queryTopicPrefix+mac, l.cfg.QoS, false, []byte{})
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send publishes the full state record to the device command topic. The
// publish is fire-and-forget; delivery is not awaited.
func (l *Lib) Send(mac string, state DeviceState) error {
	l.mu.Lock()
	client := l.client
	l.mu.Unlock()

	if client == nil {
		return ErrNotConnected
	}

	client.Publish(cmdTopicPrefix+mac, l.cfg.QoS, false, state.Encode())
	return nil
}

func (l *Lib) onStatus(_ mqtt.Client, msg mqtt.Message) {
	mac := strings.TrimPrefix(msg.Topic(), statusTopicPrefix)

	state, err := ParseState(msg.Payload())
	if err != nil {
		log.WithField("mac", mac).WithError(err).Warn("dropping malformed status frame")
		return
	}

	l.mu.Lock()
	h := l.handlers[mac]
	l.mu.Unlock()

	if h != nil {
		h(mac, state)
	}
}
