package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given a logger writing text to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging at info", func() {
			Get().Info(ctx, "dataset loaded", String("name", "a.csv"), Int("rows", 3))

			Convey("Then the record should carry the fields and caller", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "msg=\"dataset loaded\"")
				So(out, ShouldContainSubstring, "name=a.csv")
				So(out, ShouldContainSubstring, "rows=3")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging at debug with the default level", func() {
			Get().Debug(ctx, "hidden")

			Convey("Then nothing should be written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the level is lowered to debug", func() {
			So(SetLevelString("DEBUG"), ShouldBeNil)
			Get().Debug(ctx, "visible", Duration("took", time.Second))

			Convey("Then debug records should be written", func() {
				So(buf.String(), ShouldContainSubstring, "visible")
				So(buf.String(), ShouldContainSubstring, "took=1s")
			})
		})

		Convey("When using a named logger", func() {
			Named("loader").Warn(ctx, "skipped rows", Int("skipped", 2))

			Convey("Then the fields should be grouped under the name", func() {
				So(buf.String(), ShouldContainSubstring, "loader.skipped=2")
			})
		})
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a logger writing json", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf), WithFormat("JSON")), ShouldBeNil)

		Convey("When logging an error", func() {
			Get().Error(context.Background(), "upload rejected", Error(errors.New("bad header")), Bool("kept", true))

			Convey("Then each record should be a JSON object", func() {
				var rec map[string]interface{}
				So(json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "upload rejected")
				So(rec["level"], ShouldEqual, "ERROR")
				So(rec["error"], ShouldEqual, "bad header")
				So(rec["kept"], ShouldEqual, true)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		So(Init(WithOutput(&bytes.Buffer{})), ShouldBeNil)

		Convey("Then known names should be accepted", func() {
			for _, name := range []string{"debug", "info", "", "warn", "warning", "error"} {
				So(SetLevelString(name), ShouldBeNil)
			}
		})

		Convey("Then unknown names should be rejected", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}
