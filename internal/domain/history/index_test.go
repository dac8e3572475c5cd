package history_test

import (
	"testing"
	"time"

	"github.com/okian/dueline/internal/domain/history"
	"github.com/okian/dueline/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func day(d int) time.Time {
	return time.Date(2024, time.April, d, 0, 0, 0, 0, time.UTC)
}

func hit(name, team string, d int, ab, h, hr float64) model.DailyGameRecord {
	return model.DailyGameRecord{
		Name:  name,
		Team:  team,
		Role:  model.RoleHitter,
		Date:  day(d),
		Stats: map[string]float64{model.StatAtBats: ab, model.StatHits: h, model.StatHomeRuns: hr},
	}
}

func pitch(name, team string, d int, era float64) model.DailyGameRecord {
	return model.DailyGameRecord{
		Name:  name,
		Team:  team,
		Date:  day(d),
		Stats: map[string]float64{model.StatERA: era, model.StatInningsPitched: 6},
	}
}

func corpus() []model.DailyGameRecord {
	return []model.DailyGameRecord{
		hit("A. Garcia", "SF", 3, 4, 2, 1),
		hit("A. Garcia", "SF", 1, 4, 1, 0),
		hit("A.Garcia", "sf", 2, 3, 0, 0),
		hit("M. Yastrzemski", "SF", 1, 4, 2, 0),
		hit("M. Yastrzemski", "SF", 3, 5, 1, 0),
		hit("A. Garcia", "TEX", 2, 4, 4, 2),
		pitch("L. Webb", "SF", 1, 4.50),
		pitch("L. Webb", "SF", 2, 3.00),
		{Name: "", Team: "SF", Date: day(1)},
		{Name: "No Date", Team: "SF"},
	}
}

func TestBuild(t *testing.T) {
	Convey("Given a small corpus", t, func() {
		idx := history.Build(corpus())

		Convey("Then unnamed and undated records are skipped", func() {
			So(idx.Len(), ShouldEqual, 8)
			So(idx.Identities(), ShouldEqual, 4)
		})

		Convey("Then spellings of one name collapse into one ordered series", func() {
			w := idx.WindowFor("A. Garcia", "SF", model.RoleHitter, time.Time{}, 10)
			So(w.Len(), ShouldEqual, 3)
			So(w.Records[0].Date, ShouldEqual, day(1))
			So(w.Records[1].Name, ShouldEqual, "A.Garcia")
			So(w.Records[2].Date, ShouldEqual, day(3))
		})

		Convey("Then a pitcher role is inferred from the stat line", func() {
			w := idx.WindowFor("L. Webb", "SF", model.RolePitcher, time.Time{}, 0)
			So(w.Len(), ShouldEqual, 2)
		})

		Convey("Then league baselines are computed per role", func() {
			b, ok := idx.League(model.RoleHitter)
			So(ok, ShouldBeTrue)
			So(b.Games, ShouldEqual, 6)
			So(b.BattingAverage, ShouldAlmostEqual, 10.0/24.0, 1e-9)
			So(b.HomeRunRate, ShouldAlmostEqual, 3.0/24.0, 1e-9)

			p, ok := idx.League(model.RolePitcher)
			So(ok, ShouldBeTrue)
			So(p.ERA, ShouldAlmostEqual, 3.75, 1e-9)
			So(p.Rate(model.RolePitcher), ShouldAlmostEqual, 3.75, 1e-9)
		})
	})

	Convey("Given an empty corpus", t, func() {
		idx := history.Build(nil)
		_, ok := idx.League(model.RoleHitter)
		So(ok, ShouldBeFalse)
		So(idx.WindowFor("Anyone", "", "", time.Time{}, 5).Empty(), ShouldBeTrue)
	})
}

func TestWindowFor(t *testing.T) {
	Convey("Given an indexed corpus", t, func() {
		idx := history.Build(corpus())

		Convey("When n bounds the window, the most recent games are kept", func() {
			w := idx.WindowFor("a garcia", "SF", model.RoleHitter, time.Time{}, 2)
			So(w.Len(), ShouldEqual, 2)
			So(w.Records[0].Date, ShouldEqual, day(2))
		})

		Convey("When asOf is set, it is inclusive", func() {
			w := idx.WindowFor("A. Garcia", "SF", model.RoleHitter, day(2), 10)
			So(w.Len(), ShouldEqual, 2)
			last, _ := w.Last()
			So(last.Date, ShouldEqual, day(2))
		})

		Convey("When asOf precedes every game, the window is empty", func() {
			So(idx.WindowFor("A. Garcia", "SF", model.RoleHitter, day(0), 10).Empty(), ShouldBeTrue)
		})

		Convey("When the team is omitted, the first team in order is used", func() {
			w := idx.WindowFor("A. Garcia", "", "", time.Time{}, 0)
			So(w.Records[0].Team, ShouldEqual, "SF")
		})

		Convey("When the identity is unknown, the window is empty not an error", func() {
			So(idx.WindowFor("Nobody", "SF", model.RoleHitter, time.Time{}, 5).Empty(), ShouldBeTrue)
		})

		Convey("When the season is requested, nothing is trimmed", func() {
			So(idx.Season("A. Garcia", "SF", model.RoleHitter, time.Time{}).Len(), ShouldEqual, 3)
		})
	})
}

func TestTeamWindow(t *testing.T) {
	Convey("Given an indexed corpus", t, func() {
		idx := history.Build(corpus())

		Convey("Then hitters aggregate per date", func() {
			w := idx.TeamWindow("sf", model.RoleHitter, time.Time{}, 0)
			So(w.Len(), ShouldEqual, 3)
			So(w.Records[0].Stats[model.StatAtBats], ShouldEqual, 8)
			So(w.Records[0].Stats[model.StatHits], ShouldEqual, 3)
			So(w.Records[0].Team, ShouldEqual, "SF")
		})

		Convey("Then pitcher ERA is averaged and innings summed", func() {
			rs := append(corpus(), pitch("K. Hicks", "SF", 1, 2.50))
			w := history.Build(rs).TeamSeason("SF", model.RolePitcher, time.Time{})
			So(w.Len(), ShouldEqual, 2)
			So(w.Records[0].Stats[model.StatERA], ShouldAlmostEqual, 3.50, 1e-9)
			So(w.Records[0].Stats[model.StatInningsPitched], ShouldEqual, 12)
		})

		Convey("Then an unknown team yields an empty window", func() {
			So(idx.TeamWindow("XXX", model.RoleHitter, time.Time{}, 5).Empty(), ShouldBeTrue)
		})
	})
}

func TestCandidates(t *testing.T) {
	Convey("Given an indexed corpus", t, func() {
		idx := history.Build(corpus())

		Convey("Then the latest spelling of each hitter is offered", func() {
			got := idx.Candidates(model.RoleHitter, time.Time{})
			So(len(got), ShouldEqual, 3)
			So(got[0].Name, ShouldEqual, "A. Garcia")
			So(got[0].Date, ShouldEqual, day(3))
		})

		Convey("Then asOf limits which spelling is offered", func() {
			got := idx.Candidates(model.RoleHitter, day(2))
			So(len(got), ShouldEqual, 3)
			So(got[0].Name, ShouldEqual, "A.Garcia")
		})

		Convey("Then an empty role returns every identity", func() {
			So(len(idx.Candidates("", time.Time{})), ShouldEqual, 4)
		})
	})
}

func TestWindowHalves(t *testing.T) {
	Convey("Given windows of various sizes", t, func() {
		mk := func(n int) history.Window {
			var w history.Window
			for i := 0; i < n; i++ {
				w.Records = append(w.Records, hit("X", "SF", i+1, 1, 0, 0))
			}
			return w
		}

		Convey("Then odd windows give the recent half the extra game", func() {
			e, r := mk(5).Halves()
			So(e.Len(), ShouldEqual, 2)
			So(r.Len(), ShouldEqual, 3)
		})

		Convey("Then even windows split evenly", func() {
			e, r := mk(4).Halves()
			So(e.Len(), ShouldEqual, 2)
			So(r.Len(), ShouldEqual, 2)
		})

		Convey("Then rates need a positive denominator", func() {
			_, ok := history.Window{}.Rate(model.StatHits, model.StatAtBats)
			So(ok, ShouldBeFalse)
			_, ok = history.Window{}.Mean(model.StatERA)
			So(ok, ShouldBeFalse)
		})
	})
}
