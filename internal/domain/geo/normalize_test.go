package geo_test

import (
	"testing"

	"github.com/okian/persona/internal/domain/geo"
	"github.com/okian/persona/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given a normalizer without a country filter", t, func() {
		n := geo.NewNormalizer()

		Convey("When normalizing cities with positive weights", func() {
			cities := []model.CityWeight{
				{Name: "São Paulo", Weight: 0.30, CountryCode: "BR"},
				{Name: "Rio de Janeiro", Weight: 0.20, CountryCode: "BR"},
				{Name: "Curitiba", Weight: 0.10, CountryCode: "BR"},
			}
			out := n.Normalize(cities)

			Convey("Then the weights sum to 1 within 1e-9", func() {
				var sum float64
				for _, c := range out {
					sum += c.Weight
				}
				So(sum, ShouldAlmostEqual, 1.0, 1e-9)
			})

			Convey("And each city keeps its proportional share", func() {
				So(out[0].Name, ShouldEqual, "São Paulo")
				So(out[0].Weight, ShouldAlmostEqual, 0.5, 1e-9)
				So(out[1].Weight, ShouldAlmostEqual, 0.20/0.60, 1e-9)
				So(out[2].Weight, ShouldAlmostEqual, 0.10/0.60, 1e-9)
			})
		})

		Convey("When the city list is empty", func() {
			So(n.Normalize(nil), ShouldBeEmpty)
		})

		Convey("When every weight is zero", func() {
			cities := []model.CityWeight{
				{Name: "São Paulo", Weight: 0},
				{Name: "Rio de Janeiro", Weight: 0},
			}

			Convey("Then the result is empty, not NaN", func() {
				So(n.Normalize(cities), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a normalizer filtering on BR", t, func() {
		n := geo.NewNormalizer(geo.WithCountryFilter("BR"))

		Convey("When the list mixes countries", func() {
			cities := []model.CityWeight{
				{Name: "São Paulo", Weight: 0.30, CountryCode: "BR"},
				{Name: "Lisbon", Weight: 0.30, CountryCode: "PT"},
				{Name: "Curitiba", Weight: 0.10, CountryCode: "BR"},
			}
			out := n.Normalize(cities)

			Convey("Then foreign cities are dropped before the sum is taken", func() {
				So(out, ShouldHaveLength, 2)
				So(out[0].Weight, ShouldAlmostEqual, 0.75, 1e-9)
				So(out[1].Weight, ShouldAlmostEqual, 0.25, 1e-9)
			})
		})

		Convey("When only foreign cities remain", func() {
			cities := []model.CityWeight{
				{Name: "Lisbon", Weight: 0.5, CountryCode: "PT"},
			}

			Convey("Then the result is empty", func() {
				So(n.Normalize(cities), ShouldBeEmpty)
			})
		})
	})
}

func TestTopN(t *testing.T) {
	Convey("Given a list of normalized cities", t, func() {
		cities := []model.NormalizedCity{
			{Name: "a", Weight: 0.1},
			{Name: "b", Weight: 0.4},
			{Name: "c", Weight: 0.2},
			{Name: "d", Weight: 0.3},
		}

		Convey("When taking the top 2", func() {
			out := geo.TopN(cities, 2)

			Convey("Then the highest weights come first", func() {
				So(out, ShouldHaveLength, 2)
				So(out[0].Name, ShouldEqual, "b")
				So(out[1].Name, ShouldEqual, "d")
			})
		})

		Convey("When n exceeds the list length", func() {
			So(geo.TopN(cities, 10), ShouldHaveLength, 4)
		})

		Convey("When weights tie", func() {
			tied := []model.NormalizedCity{
				{Name: "first", Weight: 0.5},
				{Name: "second", Weight: 0.5},
			}
			out := geo.TopN(tied, 2)

			Convey("Then input order is preserved", func() {
				So(out[0].Name, ShouldEqual, "first")
				So(out[1].Name, ShouldEqual, "second")
			})
		})

		Convey("When n is zero", func() {
			So(geo.TopN(cities, 0), ShouldBeEmpty)
		})

		Convey("When TopN runs on the same input twice", func() {
			first := geo.TopN(cities, 3)
			second := geo.TopN(cities, 3)

			Convey("Then the input slice is untouched and results agree", func() {
				So(cities[0].Name, ShouldEqual, "a")
				So(first, ShouldResemble, second)
			})
		})
	})
}
