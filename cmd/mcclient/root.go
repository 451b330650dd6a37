package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/robinbraemer/event"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Alvin-LB/mcclient/pkg/client"
	"github.com/Alvin-LB/mcclient/pkg/proto/packet"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "mcclient",
		Short: "Minimal Minecraft Java edition client",
		Long: `mcclient connects to a Minecraft Java edition server and either
performs an offline-mode login or queries the server status.
All flags can also be set via MCCLIENT_* environment variables.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, v)
		},
	}

	fs := cmd.Flags()
	fs.String("host", "localhost", "server host to connect to")
	fs.Int("port", 25565, "server port to connect to")
	fs.StringP("username", "u", "Player", "username to log in with")
	fs.Bool("status", false, "query the server status instead of logging in")
	fs.Int("protocol", client.DefaultProtocolVersion, "protocol version announced in the handshake")
	fs.Duration("timeout", 30*time.Second, "connect timeout")
	fs.BoolP("debug", "d", false, "enable debug logging")
	_ = v.BindPFlags(fs)

	v.SetEnvPrefix("mcclient")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return cmd
}

func run(cmd *cobra.Command, v *viper.Viper) error {
	log, err := newLogger(v.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("error creating logger: %w", err)
	}

	s := client.NewSession(
		v.GetString("username"), v.GetString("host"), v.GetInt("port"),
		client.WithLogger(log),
		client.WithProtocol(v.GetInt("protocol")),
		client.WithDialTimeout(v.GetDuration("timeout")),
	)
	event.Subscribe(s.Events(), 0, func(e *packet.LoginEvent) {
		log.Info("logged in", "uuid", e.UUID.String(), "username", e.Username)
	})
	event.Subscribe(s.Events(), 0, func(e *packet.StatusEvent) {
		fmt.Fprintln(cmd.OutOrStdout(), e.Status)
	})
	event.Subscribe(s.Events(), 0, func(e *packet.PingEvent) {
		log.Info("server answered ping", "rttMillis", time.Now().UnixMilli()-e.Payload)
		_ = s.Close() // status flow is complete
	})
	event.Subscribe(s.Events(), 0, func(e *client.DisconnectEvent) {
		log.Info("disconnected", "reason", e.Reason)
	})

	if v.GetBool("status") {
		err = s.Status()
	} else {
		err = s.Login()
	}
	if err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Info("received shutdown signal")
		_ = s.Close()
		<-s.Done()
	case <-s.Done():
	}
	return nil
}

func newLogger(debug bool) (logr.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Encoding = "console"
	zl, err := cfg.Build()
	if err != nil {
		return logr.Logger{}, err
	}
	return zapr.NewLogger(zl), nil
}
