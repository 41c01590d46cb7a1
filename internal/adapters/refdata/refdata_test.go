package refdata_test

import (
	"context"
	"strings"
	"testing"

	"github.com/okian/persona/internal/adapters/refdata"
	"github.com/okian/persona/internal/domain/education"
	"github.com/okian/persona/pkg/logger"
	"github.com/okian/persona/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// rejectCount reads the rejected-row counter for one table off the registry.
func rejectCount(table string) float64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		panic(err)
	}
	for _, f := range families {
		if f.GetName() != "persona_audience_reference_rows_rejected_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "table" && l.GetValue() == table {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestLoadClassTable(t *testing.T) {
	ctx := context.Background()
	loader := refdata.NewLoader()

	Convey("Given a class table with a header row", t, func() {
		csv := "city,d_e,c,b,a\n" +
			"São Paulo,20,30,30,20\n" +
			"Rio de Janeiro,30,30,25,15\n"

		Convey("When loading it", func() {
			table, err := loader.LoadClassTable(ctx, strings.NewReader(csv))

			Convey("Then the header is skipped and both cities land", func() {
				So(err, ShouldBeNil)
				So(table, ShouldHaveLength, 2)
				So(table["São Paulo"].DE, ShouldEqual, 20.0)
				So(table["Rio de Janeiro"].A, ShouldEqual, 15.0)
			})
		})
	})

	Convey("Given a table with broken rows", t, func() {
		csv := "São Paulo,20,30,30,20\n" +
			"Curitiba,not-a-number,30,30,20\n" +
			"Fortaleza,-5,30,30,20\n" +
			"Recife,25,30\n"

		Convey("When loading it", func() {
			table, err := loader.LoadClassTable(ctx, strings.NewReader(csv))

			Convey("Then bad rows are skipped, good ones survive", func() {
				So(err, ShouldBeNil)
				So(table, ShouldHaveLength, 1)
				So(table["São Paulo"].C, ShouldEqual, 30.0)
			})
		})
	})

	Convey("Given a headerless table whose first row is malformed", t, func() {
		csv := "São Paulo,notanumber,30,30,20\n" +
			"Rio de Janeiro,30,30,25,15\n"

		Convey("When loading it", func() {
			before := rejectCount("class_mix")
			table, err := loader.LoadClassTable(ctx, strings.NewReader(csv))

			Convey("Then the bad row is rejected, not mistaken for a header", func() {
				So(err, ShouldBeNil)
				So(table, ShouldHaveLength, 1)
				So(table["Rio de Janeiro"].DE, ShouldEqual, 30.0)
				So(rejectCount("class_mix")-before, ShouldEqual, 1.0)
			})
		})
	})

	Convey("Given a table with no usable rows", t, func() {
		Convey("When loading it", func() {
			_, err := loader.LoadClassTable(ctx, strings.NewReader("city,d_e,c,b,a\n"))

			Convey("Then loading fails", func() {
				So(err, ShouldWrap, refdata.ErrReferenceLoad)
			})
		})

		Convey("When the input is empty", func() {
			_, err := loader.LoadClassTable(ctx, strings.NewReader(""))
			So(err, ShouldWrap, refdata.ErrReferenceLoad)
		})
	})
}

func TestLoadEducationTable(t *testing.T) {
	ctx := context.Background()
	loader := refdata.NewLoader()

	Convey("Given an education table with mixed-case genders", t, func() {
		csv := "city,age_band,gender,avg_years\n" +
			"São Paulo,25-34,Male,11\n" +
			"São Paulo,25-34,FEMALE,8.5\n" +
			"Curitiba,18-24,other,9\n"

		Convey("When loading it", func() {
			table, err := loader.LoadEducationTable(ctx, strings.NewReader(csv))

			Convey("Then genders normalize to lowercase and unknowns are skipped", func() {
				So(err, ShouldBeNil)
				So(table, ShouldHaveLength, 2)
				key := education.Key{City: "São Paulo", Band: "25-34", Gender: education.Male}
				So(table[key], ShouldEqual, 11.0)
				key.Gender = education.Female
				So(table[key], ShouldEqual, 8.5)
			})
		})
	})

	Convey("Given an education table with no usable rows", t, func() {
		Convey("When loading it", func() {
			_, err := loader.LoadEducationTable(ctx, strings.NewReader("city,age_band,gender,avg_years\n"))
			So(err, ShouldWrap, refdata.ErrReferenceLoad)
		})
	})
}

func TestLoadTranslations(t *testing.T) {
	ctx := context.Background()
	loader := refdata.NewLoader()

	Convey("Given a translation table", t, func() {
		csv := "from,to\n" +
			"Fitness & Gym,Fitness e Academia\n" +
			"Travel,Viagem\n"

		Convey("When loading it", func() {
			table, err := loader.LoadTranslations(ctx, strings.NewReader(csv))

			Convey("Then pairs resolve and unknowns fall back to identity", func() {
				So(err, ShouldBeNil)
				So(table.Translate("Travel"), ShouldEqual, "Viagem")
				So(table.Translate("Fashion"), ShouldEqual, "Fashion")
			})
		})
	})

	Convey("Given an empty translation table", t, func() {
		Convey("When loading it", func() {
			table, err := loader.LoadTranslations(ctx, strings.NewReader(""))

			Convey("Then an empty table is acceptable", func() {
				So(err, ShouldBeNil)
				So(table, ShouldBeEmpty)
			})
		})
	})
}
