package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/okian/gamegraph/internal/adapters/http/api"
	"github.com/okian/gamegraph/internal/domain/catalog"
	"github.com/okian/gamegraph/internal/domain/model"
	"github.com/okian/gamegraph/internal/domain/types"
	"github.com/okian/gamegraph/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies resolves "gaben" to 765 and passes other ids through.
type mockDependencies struct {
	mu         sync.Mutex
	err        error
	requestIDs []string
	calls      []string
}

func (m *mockDependencies) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *mockDependencies) Lookup(ctx context.Context, input string) (model.AccountID, error) {
	m.record("lookup")
	switch input {
	case "gaben":
		return "765", nil
	case "ghost":
		return "", fmt.Errorf("resolve: %w", catalog.ErrNotFound)
	}
	return model.AccountID(input), nil
}

func (m *mockDependencies) Resolve(ctx context.Context, input string) (types.Resolved, error) {
	m.record("resolve")
	m.mu.Lock()
	m.requestIDs = append(m.requestIDs, logger.RequestID(ctx))
	m.mu.Unlock()
	switch input {
	case "gaben":
		return types.Resolved{Input: input, AccountID: "765"}, nil
	case "ghost":
		return types.Resolved{}, fmt.Errorf("resolve: %w", catalog.ErrNotFound)
	}
	return types.Resolved{Input: input, AccountID: input}, nil
}

func (m *mockDependencies) Overview(_ context.Context, id model.AccountID) (types.Overview, error) {
	m.record("overview")
	if m.err != nil {
		return types.Overview{}, m.err
	}
	return types.Overview{AccountID: string(id), Stats: types.AccountStats{TotalTitles: 3}}, nil
}

func (m *mockDependencies) Achievements(_ context.Context, id model.AccountID) (types.Achievements, error) {
	if m.err != nil {
		return types.Achievements{}, m.err
	}
	return types.Achievements{Hidden: true, TopByProgress: []types.TitleProgress{}, RecentUnlocks: []types.Unlock{}}, nil
}

func (m *mockDependencies) FriendsView(_ context.Context, id model.AccountID) (types.FriendsView, error) {
	if m.err != nil {
		return types.FriendsView{}, m.err
	}
	return types.FriendsView{
		AccountID: string(id),
		Popular:   types.Popular{Hidden: true, Games: []types.PopularGame{}},
	}, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func serve(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		stats := &mockStatsProvider{stats: map[string]interface{}{"started": true}}
		mux := http.NewServeMux()
		api.NewServer(deps, stats, api.WithLogger(logger.Nop())).Register(context.Background(), mux)

		Convey("When probing health and metrics", func() {
			Convey("Then both serve the Prometheus exposition", func() {
				So(serve(mux, http.MethodGet, "/healthz").Code, ShouldEqual, http.StatusOK)
				So(serve(mux, http.MethodGet, "/metrics").Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When reading stats", func() {
			w := serve(mux, http.MethodGet, "/stats")

			Convey("Then the provider's map is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"started":true`)
				So(serve(mux, http.MethodPost, "/stats").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When resolving identifiers", func() {
			ok := serve(mux, http.MethodGet, "/resolve?input=gaben")
			missing := serve(mux, http.MethodGet, "/resolve")
			unknown := serve(mux, http.MethodGet, "/resolve?input=ghost")

			Convey("Then each outcome gets its status", func() {
				So(ok.Code, ShouldEqual, http.StatusOK)
				So(ok.Body.String(), ShouldContainSubstring, `"account_id":"765"`)
				So(missing.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(missing)["code"], ShouldEqual, "bad_request")
				So(unknown.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(unknown)["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When requesting account views by vanity name", func() {
			overview := serve(mux, http.MethodGet, "/accounts/gaben/overview")
			achievements := serve(mux, http.MethodGet, "/accounts/765/achievements")
			friends := serve(mux, http.MethodGet, "/accounts/765/friends")

			Convey("Then the resolved id is used and JSON is returned", func() {
				So(overview.Code, ShouldEqual, http.StatusOK)
				So(overview.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				So(overview.Body.String(), ShouldContainSubstring, `"account_id":"765"`)
				So(achievements.Code, ShouldEqual, http.StatusOK)
				So(achievements.Body.String(), ShouldContainSubstring, `"hidden":true`)
				So(friends.Code, ShouldEqual, http.StatusOK)
				So(friends.Body.String(), ShouldContainSubstring, `"popular":{"hidden":true,"games":[]}`)
			})
		})

		Convey("When one account view is requested", func() {
			serve(mux, http.MethodGet, "/accounts/gaben/overview")

			Convey("Then the id is looked up once and the operation runs once", func() {
				So(deps.calls, ShouldResemble, []string{"lookup", "overview"})
			})
		})

		Convey("When the account cannot be resolved", func() {
			w := serve(mux, http.MethodGet, "/accounts/ghost/overview")

			Convey("Then 404 is returned without running the operation", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(deps.calls, ShouldResemble, []string{"lookup"})
			})
		})

		Convey("When the primary profile is private", func() {
			deps.err = fmt.Errorf("owned titles: %w", catalog.NewPrivateProfile("765"))
			w := serve(mux, http.MethodGet, "/accounts/765/friends")

			Convey("Then 403 private_profile is returned", func() {
				So(w.Code, ShouldEqual, http.StatusForbidden)
				So(decodeError(w)["code"], ShouldEqual, "private_profile")
			})
		})

		Convey("When the engine fails unexpectedly", func() {
			deps.err = errors.New("secret internals")
			w := serve(mux, http.MethodGet, "/accounts/765/overview")

			Convey("Then 500 is returned without internal detail", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "internal_error")
				So(body["message"], ShouldNotContainSubstring, "secret")
			})
		})

		Convey("When the method is not GET", func() {
			w := serve(mux, http.MethodPost, "/accounts/765/overview")

			Convey("Then the mux rejects it", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})

		Convey("When an unknown path is requested", func() {
			So(serve(mux, http.MethodGet, "/unknown").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	Convey("Given the request id middleware", t, func() {
		deps := &mockDependencies{}
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("When the caller sends no id", func() {
			w := serve(mux, http.MethodGet, "/resolve?input=x")

			Convey("Then a uuid is generated and propagated to the handler context", func() {
				id := w.Header().Get(api.RequestIDHeader)
				_, err := uuid.Parse(id)
				So(err, ShouldBeNil)
				So(deps.requestIDs, ShouldResemble, []string{id})
			})
		})

		Convey("When the caller sends a valid id", func() {
			want := uuid.NewString()
			req := httptest.NewRequest(http.MethodGet, "/resolve?input=x", http.NoBody)
			req.Header.Set(api.RequestIDHeader, want)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is reused", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, want)
				So(deps.requestIDs, ShouldResemble, []string{want})
			})
		})
	})
}
