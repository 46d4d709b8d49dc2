package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/okian/gamegraph/internal/config"
	"github.com/okian/gamegraph/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// steamStub answers vanity resolution and a two-title library for 76561197960287930.
func steamStub() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ISteamUser/ResolveVanityURL/v0001/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("vanityurl") != "gaben" {
			_, _ = w.Write([]byte(`{"response":{"success":42}}`))
			return
		}
		_, _ = w.Write([]byte(`{"response":{"success":1,"steamid":"76561197960287930"}}`))
	})
	mux.HandleFunc("/IPlayerService/GetOwnedGames/v0001/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":{"game_count":2,"games":[{"appid":10,"name":"Portal","playtime_forever":120},{"appid":20,"name":"Idle","playtime_forever":0}]}}`))
	})
	return httptest.NewServer(mux)
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given a configured application against a stub API", t, func() {
		stub := steamStub()
		defer stub.Close()

		cfg := config.New()
		cfg.SteamAPIKey = "secret"
		cfg.SteamBaseURL = stub.URL

		ctx := context.Background()
		handler, svc, err := newHandler(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		get := func(target string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
			return w
		}

		convey.Convey("Then the business routes are served", func() {
			w := get("/accounts/gaben/overview")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"account_id":"76561197960287930"`)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"never_played_titles":1`)

			convey.So(get("/resolve?input=nobody").Code, convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("And the docs and operational routes are served", func() {
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats").Body.String(), convey.ShouldContainSubstring, `"started":true`)
		})
	})
}

func TestNewHandlerRejectedKey(t *testing.T) {
	convey.Convey("Given an upstream that rejects the configured key", t, func() {
		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`<html><body><h1>Forbidden</h1>Access is denied. Retrying will not help. Please verify your <pre>key=</pre> parameter.</body></html>`))
		}))
		defer stub.Close()

		cfg := config.New()
		cfg.SteamAPIKey = "revoked"
		cfg.SteamBaseURL = stub.URL

		handler, svc, err := newHandler(context.Background(), cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/76561197960287930/friends", http.NoBody))

		convey.Convey("Then the account is not reported as private", func() {
			convey.So(w.Code, convey.ShouldEqual, http.StatusInternalServerError)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"internal_error"`)
			convey.So(w.Body.String(), convey.ShouldNotContainSubstring, "private_profile")
		})
	})
}

func TestMainConfiguration(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		_ = os.Setenv("GAMEGRAPH_ADDR", ":8080")
		_ = os.Setenv("GAMEGRAPH_FANOUT_LIMIT", "4")
		_ = os.Setenv("GAMEGRAPH_STEAM_API_KEY", "secret")
		defer func() {
			_ = os.Unsetenv("GAMEGRAPH_ADDR")
			_ = os.Unsetenv("GAMEGRAPH_FANOUT_LIMIT")
			_ = os.Unsetenv("GAMEGRAPH_STEAM_API_KEY")
		}()

		convey.Convey("Then configuration should be loadable", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.FanoutLimit, convey.ShouldEqual, 4)
		})
	})
}

func TestSystemMetricsUpdate(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update should not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("And the loop should stop with its context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			cancel()
			<-done
		})
	})
}
