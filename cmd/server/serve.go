package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"quakecraft.ai/internal/metrics"
	persistlog "quakecraft.ai/internal/persistence/log"
	"quakecraft.ai/internal/sim/calendar"
	"quakecraft.ai/internal/sim/entity"
	"quakecraft.ai/internal/sim/schedule"
	"quakecraft.ai/internal/sim/world"
	"quakecraft.ai/internal/transport/ws"
)

type serveConfig struct {
	addr       string
	adminToken string
	queueSize  int
	resolution time.Duration
}

func newServeCmd(opts *options) *cobra.Command {
	cfg := &serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the world and its player websocket endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return runServe(ctx, opts, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.addr, "addr", ":8080", "http listen address")
	cmd.Flags().StringVar(&cfg.adminToken, "admin-token", "", "token required in HELLO to run commands (or set QC_ADMIN_TOKEN; empty = everyone)")
	cmd.Flags().IntVar(&cfg.queueSize, "queue", 32, "per-player outbound queue size")
	cmd.Flags().DurationVar(&cfg.resolution, "resolution", 50*time.Millisecond, "scheduler wall-clock resolution")

	return cmd
}

func runServe(ctx context.Context, opts *options, cfg *serveConfig) error {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	r, err := openRuntime(opts, logger)
	if err != nil {
		return err
	}
	defer r.Close()

	token := strings.TrimSpace(cfg.adminToken)
	if token == "" {
		token = strings.TrimSpace(os.Getenv("QC_ADMIN_TOKEN"))
	}

	hub := ws.NewServer(ws.Config{
		Poster:     r.sched,
		Commands:   r,
		OnJoin:     func(p entity.Player) { r.director.PlayerJoined(p) },
		World:      r.world.Params(),
		AdminToken: token,
		QueueSize:  cfg.queueSize,
		Logger:     logger,
	})
	notify := persistlog.NewNotificationLogger(opts.worldDir(), hub)
	notify.OnError = func(err error) { logger.Printf("notification journal: %v", err) }
	defer notify.Close()

	r.wire(hub, notify)
	r.director.Start(r.sched)
	r.sched.Every(opts.hourDuration, r.saveCalendar)

	reg := prometheus.NewRegistry()
	metrics.RegisterMetrics(reg)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, req *http.Request) {
		if !isLoopbackRemote(req.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		st, ok := r.state(req.Context())
		if !ok {
			http.Error(rw, "simulation stopped", http.StatusServiceUnavailable)
			return
		}
		st.Players = len(hub.OnlinePlayers())
		st.Dropped = hub.Dropped()
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(st)
	})
	mux.HandleFunc("/v1/ws", hub.Handler())

	srv := &http.Server{
		Addr:              cfg.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	simDone := make(chan error, 1)
	go func() { simDone <- r.sched.Run(ctx, cfg.resolution) }()

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("world=%s seed=%d listening on %s", opts.worldID, opts.seed, cfg.addr)
	err = srv.ListenAndServe()
	cancel()
	<-simDone
	r.saveCalendar()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type stateView struct {
	Date          calendar.Date             `json:"date"`
	Schedule      []schedule.ScheduledEvent `json:"schedule"`
	LastTriggered string                    `json:"last_triggered"`
	InFlight      int                       `json:"in_flight"`
	World         world.Stats               `json:"world"`
	Players       int                       `json:"players"`
	Dropped       uint64                    `json:"dropped_notifications"`
}

// state snapshots the simulation on its own goroutine.
func (r *runtime) state(ctx context.Context) (stateView, bool) {
	ch := make(chan stateView, 1)
	if !r.sched.Post(func() {
		v := stateView{
			Date:          calendar.New(r.cal).Now(),
			LastTriggered: r.director.LastTriggered(),
			InFlight:      r.launcher.InFlight(),
			World:         r.world.Stats(),
		}
		if s := r.director.Schedule(); s != nil {
			v.Schedule = s.Sorted()
		}
		ch <- v
	}) {
		return stateView{}, false
	}
	select {
	case v := <-ch:
		return v, true
	case <-ctx.Done():
		return stateView{}, false
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
