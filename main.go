// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/profiler"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/calcis/storefront/src/frontend/card"
	"github.com/calcis/storefront/src/frontend/directory"
	"github.com/calcis/storefront/src/frontend/handoff"
	"github.com/calcis/storefront/src/frontend/money"
)

const (
	port              = "8080"
	cookieMaxAge      = 60 * 60 * 24 * 365
	defaultHandoffTTL = 2 * time.Minute
	prefetchTimeout   = 8 * time.Second
	overlayIdleAfter  = 30 * time.Minute

	cookiePrefix    = "calcis_"
	cookieSessionID = cookiePrefix + "session-id"
	cookieUser      = cookiePrefix + "user"
	cookieSize      = cookiePrefix + "selected_numeracao"
	cookieHandoff   = cookiePrefix + "handoff"
)

var (
	baseUrl = ""
)

type ctxKeySessionID struct{}

type frontendServer struct {
	directorySvcAddr string
	handoffTTL       time.Duration

	directory    *directory.Client
	orchestrator *handoff.Orchestrator
	cards        card.Builder
	overlays     *overlaySessions
}

func main() {
	ctx := context.Background()
	if os.Getenv("ENV") != "production" {
		// a missing .env is fine, the process environment still applies
		_ = godotenv.Load()
	}

	log := logrus.New()
	log.Level = logrus.DebugLevel
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.Level = lvl
	}
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = os.Stdout

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, propagation.Baggage{}))

	baseUrl = os.Getenv("BASE_URL")

	if os.Getenv("ENABLE_TRACING") == "1" {
		log.Info("Tracing enabled.")
		initTracing(log, ctx)
	} else {
		log.Info("Tracing disabled.")
	}

	if os.Getenv("ENABLE_PROFILER") == "1" {
		log.Info("Profiling enabled.")
		go initProfiling(log, "calcis-frontend", "1.0.0")
	} else {
		log.Info("Profiling disabled.")
	}

	srvPort := port
	if os.Getenv("PORT") != "" {
		srvPort = os.Getenv("PORT")
	}
	addr := os.Getenv("LISTEN_ADDR")

	svc := new(frontendServer)
	mustMapEnv(&svc.directorySvcAddr, "PRODUCT_DIRECTORY_ADDR")
	svc.handoffTTL = defaultHandoffTTL
	if v := os.Getenv("HANDOFF_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid HANDOFF_TTL %q", v)
		}
		svc.handoffTTL = d
	}
	contact := card.DefaultContact()
	if v := os.Getenv("SHOP_WHATSAPP"); v != "" {
		contact.DefaultPhone = v
	}
	if v := os.Getenv("SHOP_COUNTRY_CODE"); v != "" {
		contact.CountryCode = v
	}

	store := newHandoffStore(ctx, log, os.Getenv("HANDOFF_REDIS_ADDR"), svc.handoffTTL)
	svc.wire(log, directory.New(svc.directorySvcAddr, directory.WithLogger(log)), store, contact)
	go svc.runSweeper(ctx, log, time.Minute)

	log.Infof("starting server on %s:%s", addr, srvPort)
	log.Fatal(http.ListenAndServe(addr+":"+srvPort, svc.handler(log)))
}

// wire connects the server to its collaborators.
func (fe *frontendServer) wire(log logrus.FieldLogger, dir *directory.Client, store handoff.Store, contact card.Contact) {
	fe.directory = dir
	fe.orchestrator = handoff.NewOrchestrator(dir, store, log, prefetchTimeout)
	fe.cards = card.NewBuilder(contact, money.BRL())
	fe.overlays = newOverlaySessions(log, overlayIdleAfter)
	if fe.handoffTTL == 0 {
		fe.handoffTTL = defaultHandoffTTL
	}
}

// handler returns the routed and instrumented HTTP handler.
func (fe *frontendServer) handler(log *logrus.Logger) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(baseUrl+"/", fe.welcomeHandler).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(baseUrl+"/", fe.identityHandler).Methods(http.MethodPost)
	r.HandleFunc(baseUrl+"/numeracao", fe.sizesHandler).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(baseUrl+"/numeracao", fe.selectSizeHandler).Methods(http.MethodPost)
	r.HandleFunc(baseUrl+"/catalogo/{numeracao}", fe.catalogHandler).Methods(http.MethodGet)
	r.HandleFunc(baseUrl+"/produto/{id}", fe.productHandler).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(baseUrl+"/overlay", fe.overlayStateHandler).Methods(http.MethodGet)
	r.HandleFunc(baseUrl+"/overlay/{id}/open", fe.overlayOpenHandler).Methods(http.MethodPost)
	r.HandleFunc(baseUrl+"/overlay/close", fe.overlayCloseHandler).Methods(http.MethodPost)
	r.HandleFunc(baseUrl+"/overlay/mute", fe.overlayMuteHandler).Methods(http.MethodPost)
	r.HandleFunc(baseUrl+"/overlay/playback", fe.overlayPlaybackHandler).Methods(http.MethodPost)
	r.PathPrefix(baseUrl + "/static/").Handler(http.StripPrefix(baseUrl+"/static/", http.FileServer(http.Dir("./static/"))))
	r.HandleFunc(baseUrl+"/robots.txt", func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "User-agent: *\nDisallow: /") })
	r.HandleFunc(baseUrl+"/_healthz", func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "ok") })

	var handler http.Handler = r
	handler = &logHandler{log: log, next: handler}            // add logging
	handler = ensureSessionID(handler)                        // add session ID
	handler = otelhttp.NewHandler(handler, "calcis-frontend") // add OTel tracing
	return handler
}

// newHandoffStore returns a Redis store when addr is set and reachable, and
// the in-process store otherwise.
func newHandoffStore(ctx context.Context, log logrus.FieldLogger, addr string, ttl time.Duration) handoff.Store {
	if addr == "" {
		log.Info("handoff store: in-memory")
		return handoff.NewMemoryStore(ttl)
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.WithField("error", err).Warnf("redis at %s unreachable, falling back to in-memory handoff store", addr)
		_ = client.Close()
		return handoff.NewMemoryStore(ttl)
	}
	log.Infof("handoff store: redis at %s", addr)
	return handoff.NewRedisStore(client, ttl)
}

func initTracing(log logrus.FieldLogger, ctx context.Context) (*sdktrace.TracerProvider, error) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()))
	otel.SetTracerProvider(tp)
	log.Info("Tracing provider initialized (no exporter configured)")
	return tp, nil
}

func initProfiling(log logrus.FieldLogger, service, version string) {
	for i := 1; i <= 3; i++ {
		log = log.WithField("retry", i)
		if err := profiler.Start(profiler.Config{
			Service:        service,
			ServiceVersion: version,
		}); err != nil {
			log.Warnf("warn: failed to start profiler: %+v", err)
		} else {
			log.Info("started Stackdriver profiler")
			return
		}
		d := time.Second * 10 * time.Duration(i)
		log.Debugf("sleeping %v to retry initializing Stackdriver profiler", d)
		time.Sleep(d)
	}
	log.Warn("warning: could not initialize Stackdriver profiler after retrying, giving up")
}

func mustMapEnv(target *string, envKey string) {
	v := os.Getenv(envKey)
	if v == "" {
		panic(fmt.Sprintf("environment variable %q not set", envKey))
	}
	*target = v
}
