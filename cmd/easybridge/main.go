package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/home-easy/easybridge/cmd/app"
	"github.com/home-easy/easybridge/internal/climate"
	httpctrl "github.com/home-easy/easybridge/internal/controllers/http"
	modbusctrl "github.com/home-easy/easybridge/internal/controllers/modbus"
	mqttctrl "github.com/home-easy/easybridge/internal/controllers/mqtt"
	"github.com/home-easy/easybridge/internal/homeeasy"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to config file (.yaml/.yml/.json)")
	flag.Parse()

	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	lib := homeeasy.NewLib(homeeasy.Config{
		BrokerURL: cfg.Gateway.BrokerURL,
		ClientID:  cfg.Gateway.ClientID,
		Username:  cfg.Gateway.Username,
		Password:  cfg.Gateway.Password,
		QoS:       cfg.Gateway.QoS,
	})

	entity, err := climate.New(cfg.Device.MAC, cfg.Device.ShouldPull, lib)
	if err != nil {
		log.Fatal(err)
	}
	defer entity.Close()

	log.WithFields(log.Fields{
		"mac":  entity.UniqueID(),
		"name": entity.Name(),
		"poll": entity.ShouldPoll(),
	}).Info("entity ready")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Controllers.HTTP.Enabled {
		srv := httpctrl.New(entity, cfg.Controllers.HTTP.Addr)
		log.WithField("addr", cfg.Controllers.HTTP.Addr).Info("http controller listening")
		g.Go(func() error { return srv.Run(ctx) })
	}

	if cfg.Controllers.MQTT.Enabled {
		ctrl, err := mqttctrl.New(entity, mqttctrl.Config{
			MAC:             cfg.Device.MAC,
			BrokerURL:       cfg.Controllers.MQTT.BrokerURL,
			ClientID:        cfg.Controllers.MQTT.ClientID,
			BaseTopic:       cfg.Controllers.MQTT.BaseTopic,
			QoS:             cfg.Controllers.MQTT.QoS,
			RetainState:     cfg.Controllers.MQTT.RetainState,
			PublishInterval: cfg.Controllers.MQTT.PublishInterval,
			Username:        cfg.Controllers.MQTT.Username,
			Password:        cfg.Controllers.MQTT.Password,
		})
		if err != nil {
			log.Fatal(err)
		}
		g.Go(func() error { return ctrl.Run(ctx) })
	}

	if cfg.Controllers.Modbus.Enabled {
		ctrl, err := modbusctrl.New(entity, modbusctrl.Config{
			MAC:    cfg.Device.MAC,
			Addr:   cfg.Controllers.Modbus.Addr,
			UnitID: cfg.Controllers.Modbus.UnitID,
		})
		if err != nil {
			log.Fatal(err)
		}
		g.Go(func() error { return ctrl.Run(ctx) })
	}

	if entity.ShouldPoll() {
		g.Go(func() error { return pollLoop(ctx, entity, cfg.Device.PollInterval) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("bridge exited")
	}
}

// pollLoop drives the entity's explicit status refresh when the device does
// not push. Fresh state still arrives via the push path.
func pollLoop(ctx context.Context, entity *climate.Thermostat, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := entity.Update(ctx); err != nil {
				log.WithError(err).Warn("status poll failed")
			}
		}
	}
}
