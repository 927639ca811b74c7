package query

import "regexp"

// The parser's vocabulary lives in data tables so the dealership can extend
// it without touching parsing logic. Order matters everywhere: extraction is
// first match wins, and some keywords (camioneta) appear under more than one
// entry.

// PricePattern extracts a budget bound from the query. Single-capture
// patterns set the maximum; double-capture patterns set a min and max.
type PricePattern struct {
	Re    *regexp.Regexp
	Range bool // two capture groups: min and max
}

// PricePatterns in priority order.
var PricePatterns = []PricePattern{
	{Re: regexp.MustCompile(`menos de (\d+)`)},
	{Re: regexp.MustCompile(`bajo (\d+)`)},
	{Re: regexp.MustCompile(`máximo (\d+)`)},
	{Re: regexp.MustCompile(`hasta (\d+)`)},
	{Re: regexp.MustCompile(`entre (\d+) y (\d+)`), Range: true},
	{Re: regexp.MustCompile(`(\d+) a (\d+)`), Range: true},
	{Re: regexp.MustCompile(`presupuesto de (\d+)`)},
}

// lowMileageDefault is the cap implied by vague low-mileage phrases.
const lowMileageDefault = 20000

// MileagePattern extracts a mileage cap. A zero Cap means the limit is read
// from the pattern's capture group; otherwise Cap is used directly.
type MileagePattern struct {
	Re  *regexp.Regexp
	Cap int
}

// MileagePatterns in priority order.
var MileagePatterns = []MileagePattern{
	{Re: regexp.MustCompile(`pocos kilómetros`), Cap: lowMileageDefault},
	{Re: regexp.MustCompile(`bajo kilometraje`), Cap: lowMileageDefault},
	{Re: regexp.MustCompile(`menos de (\d+) km`)},
	{Re: regexp.MustCompile(`máximo (\d+) kilómetros`)},
}

// Colors recognised in queries, lowercase.
var Colors = []string{
	"rojo", "negro", "blanco", "azul", "gris", "verde", "amarillo", "naranja",
}

// Synonyms maps a canonical term to the query keywords that select it.
type Synonyms struct {
	Canonical string
	Keywords  []string
}

// BodyStyles in priority order. Canonical values match substrings of the
// inventory's body style labels.
var BodyStyles = []Synonyms{
	{Canonical: "sedan", Keywords: []string{"sedan", "sedán"}},
	{Canonical: "suv", Keywords: []string{"suv", "todoterreno", "camioneta"}},
	{Canonical: "pickup", Keywords: []string{"pickup", "pick-up", "camioneta"}},
	{Canonical: "hatchback", Keywords: []string{"hatchback", "compacto"}},
	{Canonical: "coupe", Keywords: []string{"coupe", "coupé", "deportivo"}},
	{Canonical: "van", Keywords: []string{"van", "furgoneta", "monovolumen"}},
}

// Makes recognised in queries, lowercase, in priority order.
var Makes = []string{
	"audi", "bmw", "mercedes", "toyota", "honda", "ford", "volkswagen",
	"nissan", "hyundai", "kia", "mazda", "subaru", "lexus", "acura",
	"infiniti", "volvo", "cadillac", "genesis", "jaguar", "land rover",
	"porsche", "tesla", "aston martin", "ferrari", "lamborghini",
}

// FuelTypes in priority order.
var FuelTypes = []Synonyms{
	{Canonical: "híbrido", Keywords: []string{"híbrido", "hibrido", "hybrid"}},
	{Canonical: "eléctrico", Keywords: []string{"eléctrico", "electrico", "electric"}},
	{Canonical: "gasolina", Keywords: []string{"gasolina", "gasoline"}},
	{Canonical: "diesel", Keywords: []string{"diesel", "diésel"}},
}

// Features maps needs mentioned in queries to feature tags. Unlike the other
// tables, every matching entry is collected.
var Features = []Synonyms{
	{Canonical: "seguridad", Keywords: []string{"seguro", "seguridad", "safety"}},
	{Canonical: "lujo", Keywords: []string{"lujo", "luxury", "premium"}},
	{Canonical: "deportivo", Keywords: []string{"deportivo", "sport", "performance"}},
	{Canonical: "familiar", Keywords: []string{"familiar", "family", "bebé", "niños"}},
	{Canonical: "maletero", Keywords: []string{"maletero", "trunk", "espacio", "carga"}},
	{Canonical: "tecnología", Keywords: []string{"tecnología", "tech", "navegación", "pantalla"}},
}
