package log

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/freeasset/mediacore/filesystem"
	"github.com/freeasset/mediacore/key"
	"github.com/freeasset/mediacore/where"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func todaysLog() string {
	path := filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")
	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func TestSetup(t *testing.T) {
	Convey("Given logging is disabled", t, func() {
		viper.Set(key.LogsWrite, false)
		Reset(viper.Reset)

		So(Setup(), ShouldBeNil)

		Convey("Nothing is written", func() {
			Warn("dropped on the floor")
			So(todaysLog(), ShouldNotContainSubstring, "dropped on the floor")
		})
	})

	Convey("Given logging is enabled", t, func() {
		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsLevel, "debug")
		Reset(func() {
			viper.Set(key.LogsWrite, false)
			_ = Setup()
			viper.Reset()
		})

		So(Setup(), ShouldBeNil)

		Convey("Lines land in today's file", func() {
			Infof("loaded %s", "/media/a.mp4")
			So(todaysLog(), ShouldContainSubstring, "loaded /media/a.mp4")
		})

		Convey("Setup can run again without losing the file", func() {
			So(Setup(), ShouldBeNil)
			Warn("after reload")
			So(todaysLog(), ShouldContainSubstring, "after reload")
		})

		Convey("Engine lines carry their prefix", func() {
			Engine("vo/gpu-next", "warn", "frame dropped")
			line, _ := lo.Find(strings.Split(todaysLog(), "\n"), func(l string) bool {
				return strings.Contains(l, "frame dropped")
			})
			So(line, ShouldContainSubstring, "engine=vo/gpu-next")
			So(line, ShouldContainSubstring, "level=warning")
		})
	})
}

func TestEngineLevel(t *testing.T) {
	Convey("Engine levels map onto logrus levels", t, func() {
		So(EngineLevel("fatal"), ShouldEqual, logrus.ErrorLevel)
		So(EngineLevel("warn"), ShouldEqual, logrus.WarnLevel)
		So(EngineLevel("v"), ShouldEqual, logrus.DebugLevel)
		So(EngineLevel("trace"), ShouldEqual, logrus.TraceLevel)
		So(EngineLevel("chatty"), ShouldEqual, logrus.DebugLevel)
	})
}
