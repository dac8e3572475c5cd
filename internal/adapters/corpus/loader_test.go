package corpus_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/dueline/internal/adapters/corpus"
	"github.com/okian/dueline/internal/domain/model"
	"github.com/okian/dueline/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

const roster = `[
  {"fullName": "Aramis Garcia", "abbreviatedName": "A. Garcia", "team": "SF", "role": "hitter"},
  {"fullName": "Logan Webb", "abbreviatedName": "L. Webb", "team": "SF", "role": "pitcher"}
]`

func TestFileLoader(t *testing.T) {
	Convey("Given a corpus directory", t, func() {
		dir := t.TempDir()
		rosterPath := filepath.Join(dir, "roster.json")
		logsDir := filepath.Join(dir, "logs")
		writeFile(t, rosterPath, roster)
		writeFile(t, filepath.Join(logsDir, "2024-04-01.json"),
			`{"players": [{"name": "A. Garcia", "team": "SF", "AB": 4, "H": "2"}]}`)
		writeFile(t, filepath.Join(logsDir, "day2.json"),
			`{"date": "2024-04-02", "players": [
			  {"name": "L. Webb", "team": "SF", "position": "P", "ERA": 3.10, "IP": 6},
			  {"name": "A. Garcia", "team": "SF", "date": "2024-04-03", "AB": 3, "H": 1}
			]}`)
		writeFile(t, filepath.Join(logsDir, "undated.json"),
			`{"players": [{"name": "A. Garcia", "AB": 4}, {"name": "Bad", "date": "04/05/2024"}]}`)
		writeFile(t, filepath.Join(logsDir, "notes.txt"), "ignored")

		l := corpus.NewFileLoader(rosterPath, logsDir)

		Convey("When loading", func() {
			data, err := l.Load(context.Background())

			Convey("Then the roster and dated records are read", func() {
				So(err, ShouldBeNil)
				So(data.Roster, ShouldHaveLength, 2)
				So(data.Roster[1].Role, ShouldEqual, model.RolePitcher)
				So(data.Files, ShouldEqual, 3)
				So(data.Records, ShouldHaveLength, 3)
				So(data.Skipped, ShouldEqual, 2)
			})

			Convey("Then dates fall back from record to file field to file name", func() {
				byDate := map[string]model.DailyGameRecord{}
				for _, r := range data.Records {
					byDate[r.Date.Format(model.DateLayout)] = r
				}
				So(byDate, ShouldContainKey, "2024-04-01")
				So(byDate["2024-04-01"].Stats[model.StatHits], ShouldEqual, 2)
				So(byDate["2024-04-02"].Role, ShouldEqual, model.RolePitcher)
				So(byDate["2024-04-03"].Name, ShouldEqual, "A. Garcia")
			})
		})
	})
}

func TestFileLoaderFailures(t *testing.T) {
	Convey("Given a missing roster", t, func() {
		dir := t.TempDir()
		l := corpus.NewFileLoader(filepath.Join(dir, "missing.json"), dir,
			corpus.WithBreaker(2, time.Minute))

		Convey("Then loads fail until the breaker opens", func() {
			_, err := l.Load(context.Background())
			So(errors.Is(err, corpus.ErrLoad), ShouldBeTrue)
			_, err = l.Load(context.Background())
			So(errors.Is(err, corpus.ErrLoad), ShouldBeTrue)

			_, err = l.Load(context.Background())
			So(errors.Is(err, corpus.ErrBreakerOpen), ShouldBeTrue)
			So(l.State(), ShouldEqual, "open")
		})
	})

	Convey("Given an empty roster", t, func() {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "roster.json"), `[]`)
		l := corpus.NewFileLoader(filepath.Join(dir, "roster.json"), dir)
		_, err := l.Load(context.Background())
		So(errors.Is(err, corpus.ErrEmptyRoster), ShouldBeTrue)
	})

	Convey("Given a malformed game log", t, func() {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "roster.json"), roster)
		writeFile(t, filepath.Join(dir, "logs", "2024-04-01.json"), `{"players": [`)
		l := corpus.NewFileLoader(filepath.Join(dir, "roster.json"), filepath.Join(dir, "logs"))
		_, err := l.Load(context.Background())
		So(errors.Is(err, corpus.ErrLoad), ShouldBeTrue)
	})

	Convey("Given a missing logs directory", t, func() {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "roster.json"), roster)
		l := corpus.NewFileLoader(filepath.Join(dir, "roster.json"), filepath.Join(dir, "nope"))
		_, err := l.Load(context.Background())
		So(errors.Is(err, corpus.ErrLoad), ShouldBeTrue)
	})
}
