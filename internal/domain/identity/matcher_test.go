package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/dueline/internal/domain/identity"
	"github.com/okian/dueline/internal/domain/model"
	"github.com/okian/dueline/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func testRoster() []model.RosterEntry {
	return []model.RosterEntry{
		{FullName: "Aramis Garcia", AbbreviatedName: "A. Garcia", Team: "sf", Role: model.RoleHitter},
		{FullName: "Adolis Garcia", AbbreviatedName: "A. Garcia", Team: "TEX", Role: model.RoleHitter},
		{FullName: "José Ramírez", AbbreviatedName: "J. Ramírez", Team: "CLE", Role: model.RoleHitter},
		{FullName: "Gerrit Cole", AbbreviatedName: "G. Cole", Team: "NYY", Role: model.RolePitcher},
		{FullName: "Garrett Crochet", AbbreviatedName: "G. Crochet", Team: "CHW", Role: model.RolePitcher},
	}
}

func TestResolveRoster(t *testing.T) {
	Convey("Given a matcher over a small roster", t, func() {
		ctx := context.Background()
		m := identity.NewMatcher(testRoster())

		Convey("Then cleaned fields are filled and teams upper-cased", func() {
			So(m.Len(), ShouldEqual, 5)
			So(m.Entries()[0].FullNameCleaned, ShouldEqual, "Aramis Garcia")
			So(m.Entries()[0].AbbreviatedNameCleaned, ShouldEqual, "A Garcia")
			So(m.Entries()[0].Team, ShouldEqual, "SF")
		})

		Convey("When the name matches exactly after canonicalisation", func() {
			got, err := m.ResolveRoster(ctx, "  garcia,   aramis ", "", "")
			So(err, ShouldBeNil)
			So(got.Entry.FullName, ShouldEqual, "Aramis Garcia")
			So(got.Strategy, ShouldEqual, identity.MatchExactCanonical)
		})

		Convey("When the name differs only by accents", func() {
			got, err := m.ResolveRoster(ctx, "jose ramirez", "", "")
			So(err, ShouldBeNil)
			So(got.Entry.FullName, ShouldEqual, "José Ramírez")
		})

		Convey("When an abbreviated name is requested", func() {
			got, err := m.ResolveRoster(ctx, "A. Garcia", "", "")
			So(err, ShouldBeNil)
			So(got.Strategy, ShouldEqual, identity.MatchAbbreviation)
			So(got.Entry.FullName, ShouldEqual, "Aramis Garcia")

			Convey("And a team hint is given, that team is preferred", func() {
				got, err := m.ResolveRoster(ctx, "A.Garcia", "tex", "")
				So(err, ShouldBeNil)
				So(got.Entry.FullName, ShouldEqual, "Adolis Garcia")
			})
		})

		Convey("When a team hint disagrees with the only match", func() {
			got, err := m.ResolveRoster(ctx, "Gerrit Cole", "BOS", "")
			So(err, ShouldBeNil)
			So(got.Entry.Team, ShouldEqual, "NYY")
		})

		Convey("When the name is unknown", func() {
			_, err := m.ResolveRoster(ctx, "Unknown Player", "", "")
			So(errors.Is(err, identity.ErrIdentityNotFound), ShouldBeTrue)

			var nf *identity.NotFoundError
			So(errors.As(err, &nf), ShouldBeTrue)
			So(nf.Stage, ShouldEqual, identity.StageRoster)
		})

		Convey("When the name is near a roster entry", func() {
			_, err := m.ResolveRoster(ctx, "Gerry Cole", "", "")
			So(errors.Is(err, identity.ErrIdentityNotFound), ShouldBeTrue)
			So(identity.Suggestions(err), ShouldContain, "Gerrit Cole")
		})

		Convey("When the name is empty", func() {
			_, err := m.ResolveRoster(ctx, "   ", "", "")
			So(errors.Is(err, identity.ErrIdentityNotFound), ShouldBeTrue)
			So(identity.Suggestions(err), ShouldBeEmpty)
		})

		Convey("Then repeated resolution is deterministic", func() {
			first, err1 := m.ResolveRoster(ctx, "A. Garcia", "", "")
			for i := 0; i < 10; i++ {
				again, err2 := m.ResolveRoster(ctx, "A. Garcia", "", "")
				So(err2, ShouldEqual, err1)
				So(again, ShouldResemble, first)
			}
		})
	})
}

func TestResolveDailyName(t *testing.T) {
	Convey("Given a roster entry and a day's log names", t, func() {
		ctx := context.Background()
		m := identity.NewMatcher(testRoster())
		aramis := m.Entries()[0]

		Convey("When the log spells the name exactly like the roster abbreviation", func() {
			got, err := m.ResolveDailyName(ctx, aramis, []model.DailyGameRecord{
				{Name: "G. Cole", Team: "NYY"},
				{Name: "A. Garcia", Team: "SF"},
			})
			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "A. Garcia")
			So(got.Strategy, ShouldEqual, identity.MatchExactCanonical)
		})

		Convey("When the log glues the initial", func() {
			got, err := m.ResolveDailyName(ctx, aramis, []model.DailyGameRecord{{Name: "A.Garcia", Team: "SF"}})
			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "A.Garcia")
		})

		Convey("When the log carries the full name", func() {
			got, err := m.ResolveDailyName(ctx, aramis, []model.DailyGameRecord{{Name: "aramis garcia", Team: "SF"}})
			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "aramis garcia")
			So(got.Strategy, ShouldEqual, identity.MatchAbbreviation)
		})

		Convey("When another team has the same abbreviation", func() {
			got, err := m.ResolveDailyName(ctx, aramis, []model.DailyGameRecord{
				{Name: "A. Garcia", Team: "TEX"},
				{Name: "Ar Garcia", Team: "SF"},
			})
			So(err, ShouldBeNil)
			So(got.Team, ShouldEqual, "SF")
		})

		Convey("When the team has no log names, other teams are searched", func() {
			got, err := m.ResolveDailyName(ctx, aramis, []model.DailyGameRecord{{Name: "A. Garcia", Team: "OAK"}})
			So(err, ShouldBeNil)
			So(got.Team, ShouldEqual, "OAK")
		})

		Convey("When nothing matches", func() {
			_, err := m.ResolveDailyName(ctx, aramis, []model.DailyGameRecord{{Name: "B. Garcia", Team: "SF"}})
			So(errors.Is(err, identity.ErrIdentityNotFound), ShouldBeTrue)
			So(identity.Suggestions(err), ShouldResemble, []string{"B. Garcia"})
		})
	})
}

func TestRoundTrip(t *testing.T) {
	Convey("Given every roster entry present in a log under its abbreviation", t, func() {
		ctx := context.Background()
		roster := testRoster()
		m := identity.NewMatcher(roster)
		var logs []model.DailyGameRecord
		for _, e := range roster {
			logs = append(logs, model.DailyGameRecord{Name: e.AbbreviatedName, Team: e.Team, Role: e.Role})
		}

		Convey("Then full name to roster to daily name yields the abbreviation", func() {
			for _, e := range roster {
				match, err := m.ResolveRoster(ctx, e.FullName, e.Team, e.Role)
				So(err, ShouldBeNil)
				daily, err := m.ResolveDailyName(ctx, match.Entry, logs)
				So(err, ShouldBeNil)
				So(daily.Name, ShouldEqual, e.AbbreviatedName)
			}
		})
	})
}

func TestAbbreviates(t *testing.T) {
	Convey("Given abbreviation checks", t, func() {
		So(identity.Abbreviates("A. Garcia", "Aramis Garcia"), ShouldBeTrue)
		So(identity.Abbreviates("ar garcia", "Aramis Garcia"), ShouldBeTrue)
		So(identity.Abbreviates("B. Garcia", "Aramis Garcia"), ShouldBeFalse)
		So(identity.Abbreviates("Ara Garcia", "Aramis Garcia"), ShouldBeFalse)
		So(identity.Abbreviates("A. Garcia Jr", "Aramis Garcia"), ShouldBeFalse)
		So(identity.Abbreviates("", ""), ShouldBeFalse)
	})
}

func TestSuggest(t *testing.T) {
	Convey("Given a pool of names", t, func() {
		pool := []string{"Gerrit Cole", "Garrett Crochet", "Gerardo Parra", "Aramis Garcia", "Gerrit Cole"}

		Convey("Then candidates sharing a prefix are ranked by distance and de-duplicated", func() {
			got := identity.Suggest("Gerit Cole", pool, 5)
			So(got[0], ShouldEqual, "Gerrit Cole")
			So(got, ShouldContain, "Gerardo Parra")
			So(got, ShouldNotContain, "Aramis Garcia")
			So(len(got), ShouldEqual, 2)
		})

		Convey("Then the limit caps the result", func() {
			So(identity.Suggest("Ge", []string{"Gea One", "Geb Two", "Gec Three"}, 2), ShouldHaveLength, 2)
		})

		Convey("Then empty queries suggest nothing", func() {
			So(identity.Suggest("", pool, 5), ShouldBeNil)
		})
	})
}

func TestMarkOnlyNames(t *testing.T) {
	Convey("Given names that fold to nothing", t, func() {
		ctx := context.Background()
		markOnly := "\u0301 \u0301"
		roster := append(testRoster(), model.RosterEntry{FullName: markOnly, AbbreviatedName: markOnly, Team: "SF"})
		m := identity.NewMatcher(roster)

		Convey("When one is requested", func() {
			_, err := m.ResolveRoster(ctx, markOnly, "", "")

			Convey("Then it is a recoverable miss, even against a mark-only roster entry", func() {
				So(errors.Is(err, identity.ErrIdentityNotFound), ShouldBeTrue)
				So(identity.Suggestions(err), ShouldBeEmpty)
			})
		})

		Convey("When one is the only daily log name", func() {
			logs := []model.DailyGameRecord{{Name: markOnly, Team: "SF", Role: model.RoleHitter}}
			_, err := m.ResolveDailyName(ctx, roster[0], logs)
			So(errors.Is(err, identity.ErrIdentityNotFound), ShouldBeTrue)
		})

		Convey("Then the similarity pass skips it on either side", func() {
			So(identity.Suggest(markOnly, []string{"Aramis Garcia"}, 5), ShouldBeNil)
			So(identity.Suggest("Aramis Garcia", []string{markOnly, "Aramis Garcia"}, 5), ShouldResemble, []string{"Aramis Garcia"})
		})
	})
}
