package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/dueline/internal/adapters/corpus"
	"github.com/okian/dueline/internal/adapters/http/api"
	service "github.com/okian/dueline/internal/app"
	"github.com/okian/dueline/internal/domain/model"
	"github.com/okian/dueline/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDependencies struct {
	generation uint64
	err        error

	lastRequest model.Request
	lastMatchup service.MatchupRequest
	lastTeam    service.TeamRequest
	lastSuggest string
	reloads     int
}

func (m *mockDependencies) Analyze(_ context.Context, req model.Request) (types.Prediction, error) {
	m.lastRequest = req
	if m.err != nil {
		return types.Prediction{}, m.err
	}
	return types.Prediction{
		RequestedName: req.Name,
		MatchedName:   req.Name,
		Team:          req.Team,
		Role:          string(req.Role),
		Tier:          string(model.TierPlayer),
		Suggestions:   []string{},
		Downgrades:    []types.Downgrade{},
		Generation:    m.generation,
	}, nil
}

func (m *mockDependencies) AnalyzeMatchup(ctx context.Context, req service.MatchupRequest) (types.Matchup, error) {
	m.lastMatchup = req
	if m.err != nil {
		return types.Matchup{}, m.err
	}
	subject, _ := m.Analyze(ctx, req.Subject)
	opponent, _ := m.Analyze(ctx, req.Opponent)
	return types.Matchup{Subject: subject, Opponent: opponent}, nil
}

func (m *mockDependencies) AnalyzeTeam(_ context.Context, req service.TeamRequest) (types.TeamAnalysis, error) {
	m.lastTeam = req
	if m.err != nil {
		return types.TeamAnalysis{}, m.err
	}
	return types.TeamAnalysis{Team: req.Team, Role: string(req.Role), Predictions: []types.Prediction{}}, nil
}

func (m *mockDependencies) Suggest(_ context.Context, name string) (types.Suggestions, error) {
	m.lastSuggest = name
	if m.err != nil {
		return types.Suggestions{}, m.err
	}
	return types.Suggestions{Name: name, Suggestions: []string{"Aramis Garcia"}}, nil
}

func (m *mockDependencies) Reload(context.Context) (types.ReloadResult, error) {
	m.reloads++
	if m.err != nil {
		return types.ReloadResult{}, m.err
	}
	m.generation++
	return types.ReloadResult{Generation: m.generation, RosterEntries: 3}, nil
}

func (m *mockDependencies) Generation() uint64 { return m.generation }

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func serve(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{generation: 1}
		stats := &mockStatsProvider{stats: map[string]interface{}{"ready": true}}
		mux := http.NewServeMux()
		api.NewServer(deps, stats).Register(context.Background(), mux)

		Convey("Then the health endpoint serves metrics", func() {
			w := serve(mux, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint serves the provider's map", func() {
			w := serve(mux, http.MethodGet, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]interface{}
			So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
			So(body["ready"], ShouldEqual, true)
			So(body, ShouldContainKey, "uptimeSec")
		})

		Convey("Then unknown paths are not found", func() {
			w := serve(mux, http.MethodGet, "/unknown")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestReadiness(t *testing.T) {
	Convey("Given a server before the first snapshot", t, func() {
		deps := &mockDependencies{}
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("Then readyz reports data_not_ready", func() {
			w := serve(mux, http.MethodGet, "/readyz")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decodeError(w)["code"], ShouldEqual, "data_not_ready")
		})

		Convey("When a reload publishes a snapshot", func() {
			w := serve(mux, http.MethodPost, "/reload")
			So(w.Code, ShouldEqual, http.StatusOK)

			Convey("Then readyz reports the generation", func() {
				w := serve(mux, http.MethodGet, "/readyz")
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Status     string `json:"status"`
					Generation uint64 `json:"generation"`
				}
				So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
				So(body.Status, ShouldEqual, "ready")
				So(body.Generation, ShouldEqual, 1)
			})
		})

		Convey("Then GET on reload is not found", func() {
			w := serve(mux, http.MethodGet, "/reload")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(deps.reloads, ShouldEqual, 0)
		})
	})
}

func TestAnalyzeHandler(t *testing.T) {
	Convey("Given an analyze handler", t, func() {
		deps := &mockDependencies{generation: 2}
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("When the request is complete", func() {
			w := serve(mux, http.MethodGet, "/analyze?name=Aramis+Garcia&team=sf&role=batter&as_of=2025-04-05")

			Convey("Then the parsed request reaches the service", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastRequest.Name, ShouldEqual, "Aramis Garcia")
				So(deps.lastRequest.Team, ShouldEqual, "sf")
				So(deps.lastRequest.Role, ShouldEqual, model.RoleHitter)
				So(deps.lastRequest.AsOf.Format(model.DateLayout), ShouldEqual, "2025-04-05")

				var p types.Prediction
				So(json.NewDecoder(w.Body).Decode(&p), ShouldBeNil)
				So(p.RequestedName, ShouldEqual, "Aramis Garcia")
				So(p.Generation, ShouldEqual, 2)
			})
		})

		Convey("When an opponent is given", func() {
			w := serve(mux, http.MethodGet, "/analyze?name=Aramis+Garcia&opponent=Gerrit+Cole&opponent_team=NYY&opponent_role=p")

			Convey("Then a matchup is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastMatchup.Subject.Name, ShouldEqual, "Aramis Garcia")
				So(deps.lastMatchup.Opponent.Name, ShouldEqual, "Gerrit Cole")
				So(deps.lastMatchup.Opponent.Role, ShouldEqual, model.RolePitcher)

				var m types.Matchup
				So(json.NewDecoder(w.Body).Decode(&m), ShouldBeNil)
				So(m.Opponent.Team, ShouldEqual, "NYY")
			})
		})

		Convey("When the request is malformed", func() {
			cases := []string{
				"/analyze",
				"/analyze?name=%20",
				"/analyze?name=x&role=catcher",
				"/analyze?name=x&as_of=04/05/2025",
				"/analyze?name=x&opponent=y&opponent_role=umpire",
			}
			for _, target := range cases {
				Convey(fmt.Sprintf("Then %s is a bad request", target), func() {
					w := serve(mux, http.MethodGet, target)
					So(w.Code, ShouldEqual, http.StatusBadRequest)
					So(decodeError(w)["code"], ShouldEqual, "bad_request")
				})
			}
		})

		Convey("When the method is not GET", func() {
			w := serve(mux, http.MethodPost, "/analyze?name=x")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestServiceErrorMapping(t *testing.T) {
	Convey("Given a service that fails", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{fmt.Errorf("wrapped: %w", service.ErrCorpusUnavailable), http.StatusServiceUnavailable, "data_not_ready"},
			{service.ErrNotStarted, http.StatusServiceUnavailable, "not_started"},
			{corpus.ErrBreakerOpen, http.StatusServiceUnavailable, "breaker_open"},
			{service.ErrInvalidRequest, http.StatusBadRequest, "bad_request"},
			{service.ErrUnknownTeam, http.StatusNotFound, "not_found"},
			{service.ErrBackpressure, http.StatusTooManyRequests, "backpressure"},
			{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
			{fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
		}
		for _, tc := range cases {
			Convey(fmt.Sprintf("When it returns %v", tc.err), func() {
				deps := &mockDependencies{generation: 1, err: tc.err}
				mux := http.NewServeMux()
				api.NewServer(deps, &mockStatsProvider{}).Register(context.Background(), mux)

				w := serve(mux, http.MethodGet, "/analyze?name=x")
				So(w.Code, ShouldEqual, tc.status)
				So(decodeError(w)["code"], ShouldEqual, tc.code)
			})
		}
	})
}

func TestTeamHandler(t *testing.T) {
	Convey("Given a team handler with a max limit of 10", t, func() {
		deps := &mockDependencies{generation: 1}
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}, api.WithMaxLimit(10)).Register(context.Background(), mux)

		Convey("When every parameter is valid", func() {
			w := serve(mux, http.MethodGet, "/team/SF?role=pitcher&sort=due&min_score=0.4&limit=5&as_of=2025-04-03")

			Convey("Then the team request is forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastTeam.Team, ShouldEqual, "SF")
				So(deps.lastTeam.Role, ShouldEqual, model.RolePitcher)
				So(deps.lastTeam.Sort, ShouldEqual, "due")
				So(deps.lastTeam.MinScore, ShouldEqual, 0.4)
				So(deps.lastTeam.Limit, ShouldEqual, 5)
				So(deps.lastTeam.AsOf.IsZero(), ShouldBeFalse)

				var res types.TeamAnalysis
				So(json.NewDecoder(w.Body).Decode(&res), ShouldBeNil)
				So(res.Predictions, ShouldNotBeNil)
			})
		})

		Convey("When the limit exceeds the maximum", func() {
			w := serve(mux, http.MethodGet, "/team/SF?limit=11")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "limit_exceeded")
		})

		Convey("When parameters are malformed", func() {
			for _, target := range []string{
				"/team/",
				"/team/SF/extra",
				"/team/SF?limit=0",
				"/team/SF?limit=ten",
				"/team/SF?min_score=high",
				"/team/SF?role=coach",
				"/team/SF?as_of=yesterday",
			} {
				Convey(fmt.Sprintf("Then %s is a bad request", target), func() {
					w := serve(mux, http.MethodGet, target)
					So(w.Code, ShouldEqual, http.StatusBadRequest)
				})
			}
		})

		Convey("When the team is unknown", func() {
			deps.err = service.ErrUnknownTeam
			w := serve(mux, http.MethodGet, "/team/ZZZ")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSuggestHandler(t *testing.T) {
	Convey("Given a suggest handler", t, func() {
		deps := &mockDependencies{generation: 1}
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("When a name is given", func() {
			w := serve(mux, http.MethodGet, "/suggest?name=Aram")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastSuggest, ShouldEqual, "Aram")

			var res types.Suggestions
			So(json.NewDecoder(w.Body).Decode(&res), ShouldBeNil)
			So(res.Suggestions, ShouldResemble, []string{"Aramis Garcia"})
		})

		Convey("When the name is missing", func() {
			w := serve(mux, http.MethodGet, "/suggest")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a server limited to a burst of 2", t, func() {
		deps := &mockDependencies{generation: 1}
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}, api.WithRateLimit(0.001, 2)).Register(context.Background(), mux)

		Convey("When a third analysis request arrives immediately", func() {
			So(serve(mux, http.MethodGet, "/analyze?name=x").Code, ShouldEqual, http.StatusOK)
			So(serve(mux, http.MethodGet, "/suggest?name=x").Code, ShouldEqual, http.StatusOK)
			w := serve(mux, http.MethodGet, "/analyze?name=x")

			Convey("Then it is rejected as rate limited", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(w.Header().Get("Retry-After"), ShouldEqual, "1")
				So(decodeError(w)["code"], ShouldEqual, "rate_limited")
			})

			Convey("Then operational routes stay available", func() {
				So(serve(mux, http.MethodGet, "/readyz").Code, ShouldEqual, http.StatusOK)
			})
		})
	})

	Convey("Given a server with limiting disabled", t, func() {
		mux := http.NewServeMux()
		api.NewServer(&mockDependencies{generation: 1}, &mockStatsProvider{}, api.WithRateLimit(0, 0)).Register(context.Background(), mux)

		Convey("Then many requests pass", func() {
			for i := 0; i < 20; i++ {
				So(serve(mux, http.MethodGet, "/analyze?name=x").Code, ShouldEqual, http.StatusOK)
			}
		})
	})
}
