package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nshafer/penlive"
	"github.com/nshafer/penlive/internal/config"
	"github.com/nshafer/penlive/internal/metrics"
	"github.com/nshafer/penlive/internal/pens"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var expandPens []string

var pensCmd = &cobra.Command{
	Use:   "pens",
	Short: "Watch the live dashboard of all piggeries",
	Long:  "Shows every piggery and pen and redraws whenever the live feed sends a new snapshot. Send SIGHUP to reconnect after the feed gave up.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.log.Sync() }()

		token, err := a.token()
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		registry, stopMetrics, err := startMetrics(a)
		if err != nil {
			return err
		}
		defer stopMetrics()

		dashboard := pens.NewDashboard()
		for _, penID := range expandPens {
			dashboard.Toggle(penID)
		}

		fetchCtx, cancel := context.WithTimeout(ctx, a.cfg.API.Timeout)
		data, err := a.api.GetPens(fetchCtx, token)
		cancel()
		if err != nil {
			a.log.Warn("Failed to fetch pens", zap.Error(err))
		}
		dashboard.Seed(data, err)

		client := newLiveClient[pens.PensData](a.cfg.Live, a.cfg.API, a.log, registry, "pens")
		dashboard.Bind(client)
		defer client.Close()

		if err := client.Connect(pens.PensTarget(a.cfg.API.WSBaseURL, token)); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		return watch(ctx, client, func(snap penlive.Snapshot[pens.PensData]) {
			dashboard.Observe(snap)
			clearScreen(out)
			renderDashboard(out, dashboard.View(), dashboard.Expanded)
		})
	},
}

var penCmd = &cobra.Command{
	Use:   "pen <pen-id>",
	Short: "Watch the live chart of one pen",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		penID := args[0]

		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.log.Sync() }()

		token, err := a.token()
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		registry, stopMetrics, err := startMetrics(a)
		if err != nil {
			return err
		}
		defer stopMetrics()

		chart := pens.NewChart(a.cfg.Live.ChartWindow)

		fetchCtx, cancel := context.WithTimeout(ctx, a.cfg.API.Timeout)
		detail, err := a.api.GetPenDetail(fetchCtx, token, penID)
		cancel()
		if err != nil {
			a.log.Warn("Failed to fetch pen detail", zap.String("pen_id", penID), zap.Error(err))
		} else {
			chart.Seed(detail)
		}

		client := newLiveClient[pens.PenUpdate](a.cfg.Live, a.cfg.API, a.log, registry, "pen")
		chart.Bind(client)
		defer client.Close()

		if err := client.Connect(pens.PenTarget(a.cfg.API.WSBaseURL, penID, token)); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		return watch(ctx, client, func(snap penlive.Snapshot[pens.PenUpdate]) {
			clearScreen(out)
			renderChart(out, penID, chart.Name(), chart.Points(), snap.Err)
		})
	},
}

func init() {
	pensCmd.Flags().StringSliceVar(&expandPens, "expand", nil, "pen ids whose abnormal pigs are listed")
}

func newLiveClient[T any](live config.LiveConfig, apiCfg config.APIConfig, log *zap.Logger, registry prometheus.Registerer, feed string) *penlive.Client[T] {
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: live.HandshakeTimeout,
	}
	if apiCfg.InsecureSkipVerify {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	transport := penlive.NewWebsocket(dialer)
	transport.Logger = log.Named("websocket").With(zap.String("feed", feed))

	client := penlive.NewClient[T]()
	client.Transport = transport
	client.Logger = log.Named("live").With(zap.String("feed", feed))
	client.BackOff = penlive.NewReconnectBackOff(live.ReconnectBase, live.MaxDelay)
	client.MaxReconnectAttempts = live.MaxReconnectAttempts
	client.Metrics = penlive.NewMetrics(registry, feed)
	return client
}

// watch renders on every change of client until ctx is done. SIGHUP starts a fresh
// reconnect episode.
func watch[T any](ctx context.Context, client *penlive.Client[T], render func(penlive.Snapshot[T])) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	render(client.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-client.Changed():
			render(client.Snapshot())
		case <-hup:
			if err := client.Reconnect(); err != nil {
				return err
			}
		}
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// startMetrics serves the registry when metrics are enabled. Without them the collectors
// stay unregistered.
func startMetrics(a *app) (prometheus.Registerer, func(), error) {
	if !a.cfg.Metrics.Enabled {
		return nil, func() {}, nil
	}

	registry := metrics.NewRegistry()
	server := metrics.NewServer(a.cfg.Metrics.Port, registry, a.log.Named("metrics"))
	if err := server.Start(); err != nil {
		return nil, nil, err
	}

	return registry, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(ctx); err != nil {
			a.log.Warn("Failed to stop metrics server", zap.Error(err))
		}
	}, nil
}

func clearScreen(w io.Writer) {
	if w == os.Stdout {
		fmt.Fprint(w, "\033[H\033[2J")
	}
}
