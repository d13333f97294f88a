package records

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/lucasjones/reggen"
	"github.com/oklog/ulid/v2"
)

// Identifier patterns synthesized by regex. Formats follow the usual carrier
// conventions: alpha-prefixed member IDs, ten-digit NPIs, EIN-style tax IDs.
const (
	memberIDPattern = "[A-Z]{3}[0-9]{9}"
	groupPattern    = "[0-9]{5}-[0-9]{3}"
	phonePattern    = "\\([2-9][0-9]{2}\\) [2-9][0-9]{2}-[0-9]{4}"
	npiPattern      = "1[0-9]{9}"
	taxIDPattern    = "[0-9]{2}-[0-9]{7}"
)

// Generator produces ClaimRecords from an injected random source so batches
// are reproducible under a fixed seed.
type Generator struct {
	rng      *rand.Rand
	memberID *reggen.Generator
	group    *reggen.Generator
	phone    *reggen.Generator
	npi      *reggen.Generator
	taxID    *reggen.Generator
}

// NewGenerator builds a generator; seed drives both the feeder sampling and
// the regex synthesis.
func NewGenerator(seed int64) (*Generator, error) {
	g := &Generator{rng: rand.New(rand.NewSource(seed))}

	patterns := map[string]**reggen.Generator{
		memberIDPattern: &g.memberID,
		groupPattern:    &g.group,
		phonePattern:    &g.phone,
		npiPattern:      &g.npi,
		taxIDPattern:    &g.taxID,
	}
	for pattern, target := range patterns {
		gen, err := reggen.NewGenerator(pattern)
		if err != nil {
			return nil, fmt.Errorf("unable to compile value pattern %q: %w", pattern, err)
		}
		gen.SetSeed(seed)
		*target = gen
	}
	return g, nil
}

// Generate produces one claim record. Fields are filled in dependency order:
// identity first, then insured (which may mirror the patient), then service
// lines, then the totals derived from them.
func (g *Generator) Generate() (*ClaimRecord, error) {
	now := time.Now()
	id, err := ulid.New(ulid.Timestamp(now), ulid.Monotonic(g.rng, 0))
	if err != nil {
		return nil, fmt.Errorf("cannot generate ULID: %w", err)
	}

	rec := &ClaimRecord{ULID: id}

	// Patient identity and address.
	rec.PatientFirstName = pick(g.rng, firstNames)
	rec.PatientLastName = pick(g.rng, lastNames)
	if g.rng.Float64() < 0.4 {
		rec.PatientMI = string(rune('A' + g.rng.Intn(26)))
	}
	rec.PatientDOB = randomDate(g.rng, 1930, 2018)
	rec.PatientSex = pick(g.rng, []string{"M", "F"})
	loc := cities[g.rng.Intn(len(cities))]
	rec.PatientStreet = fmt.Sprintf("%d %s", 1+g.rng.Intn(9899), pick(g.rng, streets))
	rec.PatientCity = loc.City
	rec.PatientState = loc.State
	rec.PatientZip = fmt.Sprintf("%s%02d", loc.ZipPrefix, g.rng.Intn(100))
	rec.PatientPhone = g.phone.Generate(1)

	// Insured: self keeps the patient's identity, otherwise an independent one.
	rec.Relationship = pick(g.rng, []string{"self", "self", "self", "spouse", "child", "other"})
	if rec.Relationship == "self" {
		rec.InsuredFirstName = rec.PatientFirstName
		rec.InsuredLastName = rec.PatientLastName
		rec.InsuredMI = rec.PatientMI
	} else {
		rec.InsuredFirstName = pick(g.rng, firstNames)
		rec.InsuredLastName = rec.PatientLastName
	}
	rec.InsuredID = g.memberID.Generate(1)
	rec.GroupNumber = g.group.Generate(1)
	rec.PlanName = pick(g.rng, planNames)

	// Provider.
	rec.ProviderName = fmt.Sprintf("%s %s", pick(g.rng, lastNames), pick(g.rng, practiceSuffixes))
	rec.ProviderNPI = g.npi.Generate(1)
	rec.ProviderTaxID = g.taxID.Generate(1)
	rec.ProviderPhone = g.phone.Generate(1)
	rec.Specialty = pick(g.rng, specialties)

	// Diagnoses, then service lines referencing them.
	diagCount := 1 + g.rng.Intn(4)
	seen := make(map[string]bool)
	for len(rec.Diagnoses) < diagCount {
		code := pick(g.rng, icdCodes)
		if !seen[code] {
			seen[code] = true
			rec.Diagnoses = append(rec.Diagnoses, code)
		}
	}

	lineCount := 1 + g.rng.Intn(4)
	serviceDate := randomDate(g.rng, now.Year()-1, now.Year())
	for i := 0; i < lineCount; i++ {
		proc := cptCodes[g.rng.Intn(len(cptCodes))]
		charge := proc.MinFee + g.rng.Float64()*(proc.MaxFee-proc.MinFee)
		line := ServiceLine{
			FromDate:  serviceDate,
			ToDate:    serviceDate,
			PlaceCode: pick(g.rng, placeCodes),
			CPTCode:   proc.Code,
			Diagnosis: string(rune('A' + g.rng.Intn(len(rec.Diagnoses)))),
			Charge:    math.Round(charge*100) / 100,
			Units:     1,
		}
		rec.ServiceLines = append(rec.ServiceLines, line)
	}

	// Totals derive from the lines; paid amount is occasionally non-zero.
	for _, line := range rec.ServiceLines {
		rec.TotalCharge += line.Charge
	}
	rec.TotalCharge = math.Round(rec.TotalCharge*100) / 100
	if g.rng.Float64() < 0.2 {
		rec.AmountPaid = math.Round(rec.TotalCharge*g.rng.Float64()*100) / 100
	}
	rec.BalanceDue = math.Round((rec.TotalCharge-rec.AmountPaid)*100) / 100

	rec.PatientSigned = serviceDate
	rec.AcceptAssign = g.rng.Float64() < 0.8

	return rec, nil
}

// GenerateBatch produces count records.
func (g *Generator) GenerateBatch(count int) ([]*ClaimRecord, error) {
	batch := make([]*ClaimRecord, 0, count)
	for i := 0; i < count; i++ {
		rec, err := g.Generate()
		if err != nil {
			return nil, err
		}
		batch = append(batch, rec)
	}
	return batch, nil
}

func pick(rng *rand.Rand, list []string) string {
	return list[rng.Intn(len(list))]
}

func randomDate(rng *rand.Rand, minYear, maxYear int) time.Time {
	year := minYear + rng.Intn(maxYear-minYear+1)
	month := time.Month(1 + rng.Intn(12))
	day := 1 + rng.Intn(28)
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
