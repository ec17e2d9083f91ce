package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/statboard/internal/adapters/chart"
	"github.com/okian/statboard/internal/adapters/http/api"
	"github.com/okian/statboard/internal/adapters/repository"
	"github.com/okian/statboard/internal/domain/analytics"
	"github.com/okian/statboard/internal/domain/model"
)

const knownSession = "session-1"

// mockDependencies records the last query and answers from canned values.
type mockDependencies struct {
	lastQuery   analytics.Query
	lastName    string
	lastContent []byte
	viewsErr    error
	uploadErr   error
	chartErr    error
}

func (m *mockDependencies) check(id string) error {
	if id != knownSession {
		return fmt.Errorf("lookup %s: %w", id, repository.ErrSessionNotFound)
	}
	return nil
}

func (m *mockDependencies) NewSession(context.Context) (string, error) {
	return knownSession, nil
}

func (m *mockDependencies) Upload(_ context.Context, id, name string, content []byte) (model.Dataset, error) {
	if err := m.check(id); err != nil {
		return model.Dataset{}, err
	}
	m.lastName, m.lastContent = name, content
	if m.uploadErr != nil {
		return model.Dataset{}, m.uploadErr
	}
	return model.Dataset{
		Source:  model.SourceInfo{Name: name, Kind: model.SourceCSV},
		Records: []model.Record{{Team: "A", Player: "P1", Points: 10}},
		Skipped: 1,
	}, nil
}

func (m *mockDependencies) Controls(_ context.Context, id string) (analytics.Controls, error) {
	if err := m.check(id); err != nil {
		return analytics.Controls{}, err
	}
	return analytics.Controls{Teams: []string{"A"}, Metrics: model.Metrics(), PointsMax: 10}, nil
}

func (m *mockDependencies) Views(_ context.Context, id string, q analytics.Query) (analytics.Views, error) {
	if err := m.check(id); err != nil {
		return analytics.Views{}, err
	}
	m.lastQuery = q
	if m.viewsErr != nil {
		return analytics.Views{}, m.viewsErr
	}
	return analytics.Views{Teams: analytics.TeamView{Totals: []model.TeamTotal{{Team: "A", Total: 10}}}}, nil
}

func (m *mockDependencies) Chart(_ context.Context, id, name string, q analytics.Query, format chart.Format) ([]byte, error) {
	if err := m.check(id); err != nil {
		return nil, err
	}
	m.lastQuery = q
	if m.chartErr != nil {
		return nil, m.chartErr
	}
	return []byte("<svg>" + name + "</svg>"), nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies, opts ...api.Option) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, opts...)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func serve(mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	_ = json.NewDecoder(w.Body).Decode(&body)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("Then the health endpoint should serve metrics", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint should serve JSON", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/stats", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then the dashboard should serve the embedded page", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Sports Statistics")
			So(w.Body.String(), ShouldContainSubstring, `id="min-points"`)
		})

		Convey("Then unknown paths should not be found", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/unknown", nil))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSessionsHandler(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("When creating a session", func() {
			w := serve(mux, httptest.NewRequest(http.MethodPost, "/sessions", nil))

			Convey("Then the new id should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var body map[string]string
				So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
				So(body["session_id"], ShouldEqual, knownSession)
			})
		})

		Convey("When using the wrong method", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/sessions", nil))

			Convey("Then it should not be found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestViewsHandler(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When requesting views without a session", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/views", nil))

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When requesting views for an unknown session", func() {
			req := httptest.NewRequest(http.MethodGet, "/views", nil)
			req.Header.Set(api.SessionHeader, "other")
			w := serve(mux, req)

			Convey("Then it should not be found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(w)["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When requesting views with no filters", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/views?session="+knownSession, nil))

			Convey("Then every team should be selected", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastQuery.Teams, ShouldBeNil)
				So(deps.lastQuery.Players, ShouldBeNil)
				So(deps.lastQuery.MinPoints, ShouldBeNil)
				So(w.Body.String(), ShouldContainSubstring, `"totals":[{"team":"A","total":10}]`)
			})
		})

		Convey("When requesting views with an empty team list", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/views?session="+knownSession+"&teams=", nil))

			Convey("Then no team should be selected", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastQuery.Teams, ShouldNotBeNil)
				So(deps.lastQuery.Teams, ShouldBeEmpty)
			})
		})

		Convey("When requesting views with filters", func() {
			req := httptest.NewRequest(http.MethodGet, "/views?teams=A,%20B,&metric=Assists&min_points=12.5&players=P1,P2", nil)
			req.Header.Set(api.SessionHeader, knownSession)
			w := serve(mux, req)

			Convey("Then the filters should be passed through", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastQuery.Teams, ShouldResemble, []string{"A", "B"})
				So(deps.lastQuery.Metric, ShouldEqual, "Assists")
				So(*deps.lastQuery.MinPoints, ShouldEqual, 12.5)
				So(deps.lastQuery.Players, ShouldResemble, []string{"P1", "P2"})
			})
		})

		Convey("When min_points is not a number", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/views?session="+knownSession+"&min_points=lots", nil))

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When min_points is not finite", func() {
			for _, raw := range []string{"NaN", "Inf", "-Inf", "infinity"} {
				w := serve(mux, httptest.NewRequest(http.MethodGet, "/views?session="+knownSession+"&min_points="+raw, nil))

				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
				So(deps.lastQuery.MinPoints, ShouldBeNil)
			}
		})

		Convey("When the service rejects the threshold", func() {
			deps.viewsErr = fmt.Errorf("resolve: %w", analytics.ErrInvalidThreshold)
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/views?session="+knownSession, nil))

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the metric is unknown", func() {
			deps.viewsErr = fmt.Errorf("%w: %q", model.ErrUnknownMetric, "Steals")
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/views?session="+knownSession+"&metric=Steals", nil))

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the default dataset is unavailable", func() {
			deps.viewsErr = fmt.Errorf("load: %w", analytics.ErrDataUnavailable)
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/views?session="+knownSession, nil))

			Convey("Then the service should be unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(decodeError(w)["code"], ShouldEqual, "data_unavailable")
			})
		})

		Convey("When an unexpected error occurs", func() {
			deps.viewsErr = errors.New("boom")
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/views?session="+knownSession, nil))

			Convey("Then it should be an internal error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeError(w)["code"], ShouldEqual, "internal_error")
			})
		})

		Convey("When requesting controls", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/controls?session="+knownSession, nil))

			Convey("Then the options should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"teams":["A"]`)
				So(w.Body.String(), ShouldContainSubstring, `"points_max":10`)
			})
		})
	})
}

func TestChartsHandler(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When requesting the team chart as SVG", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/charts/teams?format=svg&session="+knownSession, nil))

			Convey("Then the image should be served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "image/svg+xml")
				So(w.Body.String(), ShouldEqual, "<svg>teams</svg>")
			})
		})

		Convey("When requesting an unknown chart", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/charts/pie?session="+knownSession, nil))

			Convey("Then it should not be found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When requesting an unsupported format", func() {
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/charts/compare?format=gif&session="+knownSession, nil))

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the chart has no data", func() {
			deps.chartErr = chart.ErrEmptyChart
			w := serve(mux, httptest.NewRequest(http.MethodGet, "/charts/compare?session="+knownSession, nil))

			Convey("Then there should be no content", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
			})
		})
	})
}

func TestDatasetsHandler(t *testing.T) {
	Convey("Given a registered API server with a small upload limit", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps, api.WithMaxUploadBytes(64))

		Convey("When uploading a raw body", func() {
			req := httptest.NewRequest(http.MethodPost, "/datasets?name=stats.csv", strings.NewReader("Team,Player\n"))
			req.Header.Set(api.SessionHeader, knownSession)
			w := serve(mux, req)

			Convey("Then the dataset summary should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastName, ShouldEqual, "stats.csv")
				So(string(deps.lastContent), ShouldEqual, "Team,Player\n")
				var body map[string]interface{}
				So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
				So(body["rows"], ShouldEqual, float64(1))
				So(body["skipped"], ShouldEqual, float64(1))
				So(body["kind"], ShouldEqual, "csv")
			})
		})

		Convey("When uploading a multipart file", func() {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			fw, err := mw.CreateFormFile("file", "upload.csv")
			So(err, ShouldBeNil)
			_, _ = fw.Write([]byte("a,b\n"))
			So(mw.Close(), ShouldBeNil)

			req := httptest.NewRequest(http.MethodPost, "/datasets?session="+knownSession, &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			mux := newMux(deps)
			w := serve(mux, req)

			Convey("Then the file part should be uploaded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastName, ShouldEqual, "upload.csv")
				So(string(deps.lastContent), ShouldEqual, "a,b\n")
			})
		})

		Convey("When the body exceeds the limit", func() {
			req := httptest.NewRequest(http.MethodPost, "/datasets?session="+knownSession, strings.NewReader(strings.Repeat("x", 128)))
			w := serve(mux, req)

			Convey("Then the payload should be too large", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(decodeError(w)["code"], ShouldEqual, "payload_too_large")
			})
		})

		Convey("When the upload cannot be parsed", func() {
			deps.uploadErr = fmt.Errorf("parse: %w", analytics.ErrDataUnavailable)
			req := httptest.NewRequest(http.MethodPost, "/datasets?session="+knownSession, strings.NewReader("junk"))
			w := serve(mux, req)

			Convey("Then it should be a bad request with data_unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "data_unavailable")
			})
		})

		Convey("When uploading without a session", func() {
			w := serve(mux, httptest.NewRequest(http.MethodPost, "/datasets", strings.NewReader("x")))

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestOperationErrors(t *testing.T) {
	Convey("Given operation-tagged errors", t, func() {
		cause := errors.New("cause")

		Convey("Then kinds and causes should both be matchable", func() {
			So(errors.Is(api.NewKind("op", api.ErrBadRequest), api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(api.Wrap("op", cause), cause), ShouldBeTrue)
			err := api.WrapKind("op", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "op: bad request: cause")
			So(api.Wrap("op", nil), ShouldBeNil)
		})
	})
}
