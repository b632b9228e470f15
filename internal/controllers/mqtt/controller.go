package mqttctrl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/home-easy/easybridge/internal/ports"
)

type Config struct {
	// Identity
	MAC string

	// MQTT connection
	BrokerURL string
	ClientID  string

	// Topics
	BaseTopic string

	// Behavior
	QoS             byte
	RetainState     bool
	PublishInterval time.Duration

	Username string
	Password string
}

type Controller struct {
	svc ports.Climate
	cfg Config

	client mqtt.Client
}

func New(svc ports.Climate, cfg Config) (*Controller, error) {
	// ---- defaults ----

	if cfg.BrokerURL == "" {
		cfg.BrokerURL = "tcp://localhost:1883"
	}

	if cfg.MAC == "" {
		return nil, errors.New("mqtt: MAC is required")
	}
	if cfg.BaseTopic == "" {
		cfg.BaseTopic = "easybridge/" + cfg.MAC
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "easybridge-" + cfg.MAC
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = 1 * time.Second
	}
	if cfg.QoS > 1 {
		return nil, errors.New("mqtt: QoS must be 0 or 1")
	}
	return &Controller{
		svc: svc,
		cfg: cfg,
	}, nil
}

func (c *Controller) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(c.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second)

	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}

	// Subscribe when connected/reconnected.
	opts.OnConnect = func(cl mqtt.Client) {
		topic := c.topic("set/+")
		token := cl.Subscribe(topic, c.cfg.QoS, c.onMessage)
		token.Wait()
		if err := token.Error(); err != nil {
			log.WithField("topic", topic).WithError(err).Warn("command subscribe failed")
		}
	}

	c.client = mqtt.NewClient(opts)
	tok := c.client.Connect()
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	// Publish loop: push-driven via the entity's re-render signal, plus an
	// interval republish that only fires when something changed.
	ticker := time.NewTicker(c.cfg.PublishInterval)
	defer ticker.Stop()

	// publish immediately once
	last := c.publishState()

	for {
		select {
		case <-ctx.Done():
			c.client.Disconnect(250)
			return ctx.Err()

		case <-c.svc.Updates():
			last = c.publishState()

		case <-ticker.C:
			cur := c.stateDTO()
			if !reflect.DeepEqual(cur, last) {
				last = c.publishState()
			}
		}
	}
}

func (c *Controller) stateDTO() stateDTO {
	return stateDTO{
		UniqueID:           c.svc.UniqueID(),
		Name:               c.svc.Name(),
		HVACMode:           c.svc.HVACMode(),
		CurrentTemperature: c.svc.CurrentTemperature(),
		TargetTemperature:  c.svc.TargetTemperature(),
		TemperatureUnit:    c.svc.TemperatureUnit(),
		FanMode:            c.svc.FanMode(),
		SwingMode:          c.svc.SwingMode(),
	}
}

func (c *Controller) publishState() stateDTO {
	dto := c.stateDTO()
	b, _ := json.Marshal(dto)
	c.client.Publish(c.topic("state"), c.cfg.QoS, c.cfg.RetainState, b)
	return dto
}

type stateDTO struct {
	UniqueID           string  `json:"unique_id"`
	Name               string  `json:"name"`
	HVACMode           string  `json:"hvac_mode"`
	CurrentTemperature float64 `json:"current_temperature"`
	TargetTemperature  float64 `json:"target_temperature"`
	TemperatureUnit    string  `json:"temperature_unit"`
	FanMode            string  `json:"fan_mode"`
	SwingMode          string  `json:"swing_mode"`
}

// Command payload format: {"value": ...}
type valueReq[T any] struct {
	Value *T `json:"value"`
}

func (c *Controller) onMessage(_ mqtt.Client, msg mqtt.Message) {
	// topic format: <base>/set/<field>
	t := msg.Topic()
	prefix := c.cfg.BaseTopic + "/set/"
	if !strings.HasPrefix(t, prefix) {
		return
	}
	field := strings.TrimPrefix(t, prefix)

	payload := msg.Payload()

	// Dispatch by field
	switch field {
	case "hvac_mode":
		v, err := decodeValueStrict[string](payload)
		if err != nil {
			return
		}
		_ = c.svc.SetHVACMode(v)

	case "target_temperature":
		v, err := decodeValueStrict[float64](payload)
		if err != nil {
			return
		}
		_ = c.svc.SetTemperature(&v)

	case "fan_mode":
		v, err := decodeValueStrict[string](payload)
		if err != nil {
			return
		}
		_ = c.svc.SetFanMode(v)

	case "swing_mode":
		v, err := decodeValueStrict[string](payload)
		if err != nil {
			return
		}
		_ = c.svc.SetSwingMode(v)
	}
}

func (c *Controller) topic(suffix string) string {
	return strings.TrimRight(c.cfg.BaseTopic, "/") + "/" + suffix
}

func decodeValueStrict[T any](b []byte) (T, error) {
	var zero T
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var req valueReq[T]
	if err := dec.Decode(&req); err != nil {
		return zero, err
	}
	if req.Value == nil {
		return zero, errors.New("missing field 'value'")
	}
	return *req.Value, nil
}
