package testdocs

// cityPool are the cities synthetic audiences are drawn from. The mix keeps
// a couple of foreign cities so country filtering has something to drop.
var cityPool = []struct {
	name    string
	country string
}{
	{"São Paulo", "BR"},
	{"Rio de Janeiro", "BR"},
	{"Belo Horizonte", "BR"},
	{"Curitiba", "BR"},
	{"Porto Alegre", "BR"},
	{"Salvador", "BR"},
	{"Fortaleza", "BR"},
	{"Recife", "BR"},
	{"Brasília", "BR"},
	{"Campinas", "BR"},
	{"Lisbon", "PT"},
	{"Miami", "US"},
}

// bandPool are the age-band codes used by the platform export.
var bandPool = []string{"13-17", "18-24", "25-34", "35-44", "45-64", "65-"}

// interestPool are platform interest names, pre-translation.
var interestPool = []string{
	"Friends, Family & Relationships",
	"Clothes, Shoes, Handbags & Accessories",
	"Camera & Photography",
	"Travel, Tourism & Aviation",
	"Music",
	"Restaurants, Food & Grocery",
	"Beauty & Cosmetics",
	"Sports",
	"Television & Film",
	"Fitness & Yoga",
}
