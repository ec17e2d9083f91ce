package analytics_test

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/okian/statboard/internal/domain/analytics"
	"github.com/okian/statboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func scenarioDataset() model.Dataset {
	return model.Dataset{Records: []model.Record{
		{Team: "A", Player: "P1", Points: 10, Assists: 2, Rebounds: 1},
		{Team: "A", Player: "P2", Points: 20, Assists: 4, Rebounds: 2},
		{Team: "B", Player: "P3", Points: 5, Assists: 1, Rebounds: 1},
	}}
}

// randomRecords builds a reproducible dataset for property checks.
func randomRecords(seed int64, n int) []model.Record {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic fixtures
	teams := []string{"A", "B", "C", "D"}
	out := make([]model.Record, n)
	for i := range out {
		out[i] = model.Record{
			Team:     teams[rng.Intn(len(teams))],
			Player:   string(rune('a'+i%26)) + string(rune('a'+i/26)),
			Points:   float64(rng.Intn(40)),
			Assists:  float64(rng.Intn(12)),
			Rebounds: float64(rng.Intn(15)),
		}
	}
	return out
}

func TestFilter(t *testing.T) {
	Convey("Given random datasets and filter specs", t, func() {
		for seed := int64(1); seed <= 20; seed++ {
			records := randomRecords(seed, 50)
			spec := model.FilterSpec{Teams: []string{"A", "C"}, Metric: model.Points, MinPoints: float64(seed)}

			got := analytics.Filter(records, spec)

			So(len(got), ShouldBeLessThanOrEqualTo, len(records))
			for _, r := range got {
				So(r.Team == "A" || r.Team == "C", ShouldBeTrue)
				So(r.Points, ShouldBeGreaterThanOrEqualTo, spec.MinPoints)
			}

			// The result is the order-preserving subsequence of matching records.
			j := 0
			for _, r := range records {
				if (r.Team == "A" || r.Team == "C") && r.Points >= spec.MinPoints {
					So(got[j], ShouldResemble, r)
					j++
				}
			}
			So(j, ShouldEqual, len(got))
		}
	})

	Convey("Given an empty team selection", t, func() {
		got := analytics.Filter(scenarioDataset().Records, model.FilterSpec{Metric: model.Points})

		Convey("Then the result should be empty but not nil", func() {
			So(got, ShouldNotBeNil)
			So(got, ShouldBeEmpty)
		})
	})
}

func TestFilterNaNThreshold(t *testing.T) {
	Convey("Given a NaN points threshold", t, func() {
		spec := model.FilterSpec{Teams: []string{"A", "B"}, Metric: model.Points, MinPoints: math.NaN()}

		Convey("Then no record should pass the filter", func() {
			got := analytics.Filter(scenarioDataset().Records, spec)
			So(got, ShouldNotBeNil)
			So(got, ShouldBeEmpty)
		})
	})
}

func TestNoticeCode(t *testing.T) {
	Convey("Given wrapped pipeline sentinels", t, func() {
		So(analytics.NoticeCode(fmt.Errorf("run: %w", analytics.ErrEmptyFilterResult)), ShouldEqual, analytics.CodeEmptyFilterResult)
		So(analytics.NoticeCode(analytics.ErrDegenerateDistribution), ShouldEqual, analytics.CodeDegenerateDistribution)
		So(analytics.NoticeCode(fmt.Errorf("%w: singular", analytics.ErrInsufficientData)), ShouldEqual, analytics.CodeInsufficientData)
		So(analytics.NoticeCode(analytics.ErrNoSelection), ShouldEqual, analytics.CodeNoSelection)
		So(analytics.NoticeCode(errors.New("other")), ShouldBeEmpty)
	})
}

func TestAggregate(t *testing.T) {
	Convey("Given random filtered records", t, func() {
		for seed := int64(1); seed <= 20; seed++ {
			records := randomRecords(seed, 40)
			for _, metric := range model.Metrics() {
				totals := analytics.Aggregate(records, metric)

				var grand, want float64
				for _, tt := range totals {
					var teamSum float64
					for _, r := range records {
						if r.Team == tt.Team {
							teamSum += r.Value(metric)
						}
					}
					So(tt.Total, ShouldEqual, teamSum)
					grand += tt.Total
				}
				for _, r := range records {
					want += r.Value(metric)
				}
				So(grand, ShouldAlmostEqual, want, 1e-9)
			}
		}
	})

	Convey("Given records in mixed team order", t, func() {
		records := []model.Record{{Team: "B", Points: 1}, {Team: "A", Points: 2}, {Team: "B", Points: 3}}

		Convey("Then teams should come out in first-seen order", func() {
			totals := analytics.Aggregate(records, model.Points)
			So(totals, ShouldResemble, []model.TeamTotal{{Team: "B", Total: 4}, {Team: "A", Total: 2}})
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given random records", t, func() {
		for seed := int64(1); seed <= 20; seed++ {
			records := randomRecords(seed, int(seed))
			got := analytics.Rank(records, model.Assists, analytics.TopN)

			So(len(got), ShouldBeLessThanOrEqualTo, analytics.TopN)
			So(len(got), ShouldBeLessThanOrEqualTo, len(records))
			for i := 1; i < len(got); i++ {
				So(got[i-1].Value, ShouldBeGreaterThanOrEqualTo, got[i].Value)
				So(got[i].Rank, ShouldEqual, i+1)
			}
		}
	})

	Convey("Given ties on the metric", t, func() {
		records := []model.Record{
			{Player: "first", Points: 10},
			{Player: "second", Points: 20},
			{Player: "third", Points: 10},
		}

		Convey("Then ties should keep input order", func() {
			got := analytics.Rank(records, model.Points, 5)
			So(got[0].Player, ShouldEqual, "second")
			So(got[1].Player, ShouldEqual, "first")
			So(got[2].Player, ShouldEqual, "third")
		})

		Convey("And the input should not be reordered", func() {
			analytics.Rank(records, model.Points, 5)
			So(records[0].Player, ShouldEqual, "first")
		})
	})

	Convey("Given no records", t, func() {
		So(analytics.Rank(nil, model.Points, 5), ShouldBeEmpty)
	})
}

func TestShares(t *testing.T) {
	Convey("Given random team totals", t, func() {
		for seed := int64(1); seed <= 20; seed++ {
			totals := analytics.Aggregate(randomRecords(seed, 30), model.Rebounds)
			rows, err := analytics.Shares(totals)

			var sum float64
			for _, r := range rows {
				sum += r.Share
			}
			if err == nil {
				So(sum, ShouldAlmostEqual, 100, 1e-6)
			} else {
				So(sum, ShouldEqual, 0)
			}
		}
	})

	Convey("Given totals that sum to zero", t, func() {
		rows, err := analytics.Shares([]model.TeamTotal{{Team: "A"}, {Team: "B"}})

		Convey("Then every share should be zero and the distribution degenerate", func() {
			So(errors.Is(err, analytics.ErrDegenerateDistribution), ShouldBeTrue)
			So(rows, ShouldHaveLength, 2)
			for _, r := range rows {
				So(r.Share, ShouldEqual, 0)
				So(math.IsNaN(r.Share), ShouldBeFalse)
			}
		})
	})

	Convey("Given no totals", t, func() {
		rows, err := analytics.Shares(nil)

		Convey("Then it should return no rows without dividing by zero", func() {
			So(errors.Is(err, analytics.ErrDegenerateDistribution), ShouldBeTrue)
			So(rows, ShouldBeEmpty)
		})
	})
}

func TestPredict(t *testing.T) {
	Convey("Given records with Points = 2*Assists + 3*Rebounds", t, func() {
		records := []model.Record{
			{Player: "a", Assists: 1, Rebounds: 2},
			{Player: "b", Assists: 4, Rebounds: 1},
			{Player: "c", Assists: 2, Rebounds: 5},
			{Player: "d", Assists: 7, Rebounds: 3},
			{Player: "e", Assists: 3, Rebounds: 3},
		}
		for i := range records {
			records[i].Points = 2*records[i].Assists + 3*records[i].Rebounds
		}

		Convey("When predicting", func() {
			p, err := analytics.Predict(records)

			Convey("Then predictions should equal the actual points", func() {
				So(err, ShouldBeNil)
				So(p.Rows, ShouldHaveLength, len(records))
				for i, row := range p.Rows {
					So(row.Player, ShouldEqual, records[i].Player)
					So(row.Predicted, ShouldAlmostEqual, row.Actual, 1e-9)
				}
			})
		})
	})

	Convey("Given fewer rows than predictors plus one", t, func() {
		_, err := analytics.Predict(scenarioDataset().Records[:2])

		Convey("Then it should signal insufficient data", func() {
			So(errors.Is(err, analytics.ErrInsufficientData), ShouldBeTrue)
		})
	})

	Convey("Given collinear predictors", t, func() {
		// Rebounds = Assists/2 for every row of the scenario dataset.
		_, err := analytics.Predict([]model.Record{
			{Points: 10, Assists: 2, Rebounds: 1},
			{Points: 20, Assists: 4, Rebounds: 2},
			{Points: 15, Assists: 6, Rebounds: 3},
		})

		Convey("Then it should signal insufficient data", func() {
			So(errors.Is(err, analytics.ErrInsufficientData), ShouldBeTrue)
		})
	})
}

func TestCompare(t *testing.T) {
	Convey("Given filtered records", t, func() {
		records := scenarioDataset().Records

		Convey("When comparing two players", func() {
			rows, err := analytics.Compare(records, []string{"P3", "P1"}, model.Assists)

			Convey("Then rows should follow record order", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldResemble, []model.ComparisonRow{
					{Player: "P1", Team: "A", Value: 2},
					{Player: "P3", Team: "B", Value: 1},
				})
			})
		})

		Convey("When no players are selected", func() {
			rows, err := analytics.Compare(records, nil, model.Points)

			Convey("Then it should report no selection", func() {
				So(errors.Is(err, analytics.ErrNoSelection), ShouldBeTrue)
				So(rows, ShouldBeEmpty)
			})
		})
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given the scenario records", t, func() {
		s := analytics.Summarize(scenarioDataset().Records)

		Convey("Then points should be described", func() {
			pts := s[model.Points]
			So(pts.Count, ShouldEqual, 3)
			So(pts.Sum, ShouldEqual, 35)
			So(pts.Median, ShouldEqual, 10)
			So(pts.Min, ShouldEqual, 5)
			So(pts.Max, ShouldEqual, 20)
			So(pts.Mean, ShouldAlmostEqual, 35.0/3, 1e-9)
		})
	})

	Convey("Given no records", t, func() {
		So(analytics.Summarize(nil), ShouldBeEmpty)
	})
}

func TestControls(t *testing.T) {
	Convey("Given a dataset with fractional points", t, func() {
		ds := model.Dataset{Records: []model.Record{
			{Team: "B", Points: 4.5},
			{Team: "A", Points: 19.2},
		}}
		c := analytics.ControlsFor(ds)

		Convey("Then the slider bounds should be whole numbers around the range", func() {
			So(c.PointsMin, ShouldEqual, 4)
			So(c.PointsMax, ShouldEqual, 20)
		})

		Convey("And the default spec should select every team", func() {
			So(c.Default.Teams, ShouldResemble, []string{"B", "A"})
			So(c.Default.Metric, ShouldEqual, model.Points)
			So(c.Default.MinPoints, ShouldEqual, 4)
			So(analytics.DefaultFilterSpec(ds), ShouldResemble, c.Default)
		})
	})
}

func TestRunScenarios(t *testing.T) {
	Convey("Given the three-player dataset", t, func() {
		ds := scenarioDataset()

		Convey("When selecting both teams with min points 0 and metric Points", func() {
			v := analytics.Run(ds, analytics.Request{
				Filter: model.FilterSpec{Teams: []string{"A", "B"}, Metric: model.Points},
			})

			Convey("Then aggregation should be [(A,30),(B,5)]", func() {
				So(v.Teams.Totals, ShouldResemble, []model.TeamTotal{{Team: "A", Total: 30}, {Team: "B", Total: 5}})
			})

			Convey("And shares should be 85.7% and 14.3%", func() {
				So(v.Shares.Rows, ShouldHaveLength, 2)
				So(v.Shares.Rows[0].Share, ShouldAlmostEqual, 85.714, 0.001)
				So(v.Shares.Rows[1].Share, ShouldAlmostEqual, 14.286, 0.001)
				So(v.Shares.Notice, ShouldBeNil)
			})

			Convey("And the ranking should be P2, P1, P3", func() {
				So(v.Top.Rows, ShouldHaveLength, 3)
				So(v.Top.Rows[0].Player, ShouldEqual, "P2")
				So(v.Top.Rows[0].Value, ShouldEqual, 20)
				So(v.Top.Rows[1].Player, ShouldEqual, "P1")
				So(v.Top.Rows[2].Player, ShouldEqual, "P3")
			})

			Convey("And the comparison should ask for a selection", func() {
				So(v.Comparison.Notice.Code, ShouldEqual, analytics.CodeNoSelection)
				So(v.Comparison.Options, ShouldResemble, []string{"P1", "P2", "P3"})
			})

			Convey("And the prediction should fit the three rows", func() {
				So(v.Predictions.Notice, ShouldBeNil)
				So(v.Predictions.Prediction.Rows, ShouldHaveLength, 3)
			})
		})

		Convey("When min points is 15", func() {
			v := analytics.Run(ds, analytics.Request{
				Filter: model.FilterSpec{Teams: []string{"A", "B"}, Metric: model.Points, MinPoints: 15},
			})

			Convey("Then only P2 should remain", func() {
				So(v.Filtered.Rows, ShouldHaveLength, 1)
				So(v.Filtered.Rows[0].Player, ShouldEqual, "P2")
				So(v.Teams.Totals, ShouldResemble, []model.TeamTotal{{Team: "A", Total: 20}})
				So(v.Top.Rows, ShouldHaveLength, 1)
				So(v.Top.Rows[0].Player, ShouldEqual, "P2")
				So(v.Shares.Rows, ShouldResemble, []model.AggregateRow{{Team: "A", Total: 20, Share: 100}})
			})

			Convey("And the prediction should be insufficient", func() {
				So(v.Predictions.Prediction, ShouldBeNil)
				So(v.Predictions.Notice.Code, ShouldEqual, analytics.CodeInsufficientData)
			})
		})

		Convey("When no teams are selected", func() {
			v := analytics.Run(ds, analytics.Request{
				Filter:  model.FilterSpec{Metric: model.Points},
				Players: []string{"P1"},
			})

			Convey("Then every view should carry an empty-filter notice", func() {
				So(v.Filtered.Rows, ShouldBeEmpty)
				So(v.Teams.Totals, ShouldBeEmpty)
				So(v.Top.Rows, ShouldBeEmpty)
				So(v.Comparison.Rows, ShouldBeEmpty)
				So(v.Shares.Rows, ShouldBeEmpty)
				So(v.Predictions.Prediction, ShouldBeNil)
				notices := v.Notices()
				So(notices, ShouldHaveLength, 6)
				for _, n := range notices {
					So(n.Code, ShouldEqual, analytics.CodeEmptyFilterResult)
				}
			})
		})

		Convey("When the selected metric totals zero", func() {
			zero := model.Dataset{Records: []model.Record{
				{Team: "A", Player: "x", Points: 1},
				{Team: "B", Player: "y", Points: 2},
			}}
			v := analytics.Run(zero, analytics.Request{
				Filter: model.FilterSpec{Teams: []string{"A", "B"}, Metric: model.Assists},
			})

			Convey("Then shares should be zero with a degenerate notice", func() {
				So(v.Shares.Notice.Code, ShouldEqual, analytics.CodeDegenerateDistribution)
				for _, r := range v.Shares.Rows {
					So(r.Share, ShouldEqual, 0)
				}
			})
		})

		Convey("When running twice with the same input", func() {
			req := analytics.Request{Filter: model.FilterSpec{Teams: []string{"A", "B"}, Metric: model.Rebounds}, Players: []string{"P2"}}

			Convey("Then the views should be identical", func() {
				So(analytics.Run(ds, req), ShouldResemble, analytics.Run(ds, req))
			})
		})
	})
}

func TestQueryResolve(t *testing.T) {
	Convey("Given the three-player dataset", t, func() {
		ds := scenarioDataset()

		Convey("When resolving an empty query", func() {
			spec, err := analytics.Query{}.Resolve(ds)

			Convey("Then it should equal the default filter", func() {
				So(err, ShouldBeNil)
				So(spec, ShouldResemble, analytics.DefaultFilterSpec(ds))
			})
		})

		Convey("When resolving explicit values", func() {
			minPoints := 12.0
			spec, err := analytics.Query{Teams: []string{}, Metric: "REBOUNDS", MinPoints: &minPoints}.Resolve(ds)

			Convey("Then they should override the defaults", func() {
				So(err, ShouldBeNil)
				So(spec.Teams, ShouldBeEmpty)
				So(spec.Teams, ShouldNotBeNil)
				So(spec.Metric, ShouldEqual, model.Rebounds)
				So(spec.MinPoints, ShouldEqual, 12)
			})
		})

		Convey("When resolving a non-finite threshold", func() {
			for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
				threshold := v
				_, err := analytics.Query{MinPoints: &threshold}.Resolve(ds)

				So(errors.Is(err, analytics.ErrInvalidThreshold), ShouldBeTrue)
			}
		})

		Convey("When resolving an unknown metric", func() {
			_, err := analytics.Query{Metric: "blocks"}.Resolve(ds)

			Convey("Then it should fail with ErrUnknownMetric", func() {
				So(errors.Is(err, model.ErrUnknownMetric), ShouldBeTrue)
			})
		})
	})
}
