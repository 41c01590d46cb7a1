package config_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/persona/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given a clean environment", t, func() {
		unsetEnv(t)

		Convey("When loading without overrides", func() {
			cfg, err := config.Load(ctx)

			Convey("Then defaults apply", func() {
				So(err, ShouldBeNil)
				So(cfg.LogLevel, ShouldEqual, "info")
				So(cfg.QueueSize, ShouldEqual, 1024)
				So(cfg.DedupeSize, ShouldEqual, 10_000)
				So(cfg.CountryFilter, ShouldEqual, "BR")
				So(cfg.TopInterests, ShouldEqual, 5)
				So(cfg.TopCities, ShouldEqual, 5)
				So(cfg.PostSampleSize, ShouldEqual, 12)
				So(cfg.EducationStdDev, ShouldEqual, 3.0)
				So(cfg.WorkerCount, ShouldBeGreaterThan, 0)
				So(cfg.EnrichEnabled, ShouldBeFalse)
			})
		})

		Convey("When environment variables override defaults", func() {
			t.Setenv("PERSONA_QUEUE_SIZE", "64")
			t.Setenv("PERSONA_COUNTRY_FILTER", "PT")
			t.Setenv("PERSONA_LOG_LEVEL", "debug")
			cfg, err := config.Load(ctx)

			Convey("Then the overrides win", func() {
				So(err, ShouldBeNil)
				So(cfg.QueueSize, ShouldEqual, 64)
				So(cfg.CountryFilter, ShouldEqual, "PT")
				So(cfg.LogLevel, ShouldEqual, "debug")
				So(cfg.TopInterests, ShouldEqual, 5)
			})
		})

		Convey("When a YAML file is layered under the environment", func() {
			path := filepath.Join(t.TempDir(), "config.yaml")
			yaml := "queue_size: 32\ntop_interests: 3\n"
			So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
			t.Setenv("PERSONA_CONFIG", path)
			t.Setenv("PERSONA_TOP_INTERESTS", "7")
			cfg, err := config.Load(ctx)

			Convey("Then env beats file beats defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.QueueSize, ShouldEqual, 32)
				So(cfg.TopInterests, ShouldEqual, 7)
			})
		})

		Convey("When the config file is missing", func() {
			t.Setenv("PERSONA_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
			_, err := config.Load(ctx)

			Convey("Then loading fails with a load error", func() {
				So(err, ShouldWrap, config.ErrLoadConfig)
			})
		})

		Convey("When an override is invalid", func() {
			t.Setenv("PERSONA_QUEUE_SIZE", "-1")
			_, err := config.Load(ctx)

			Convey("Then validation rejects it", func() {
				So(err, ShouldWrap, config.ErrInvalidConfig)
			})
		})

		Convey("When enrichment is enabled without a base URL", func() {
			t.Setenv("PERSONA_ENRICH_ENABLED", "true")
			_, err := config.Load(ctx)

			Convey("Then validation rejects it", func() {
				So(err, ShouldWrap, config.ErrInvalidConfig)
			})
		})
	})
}

// unsetEnv clears every PERSONA_ variable for the duration of the test.
func unsetEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "PERSONA_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}
