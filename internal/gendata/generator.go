package gendata

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// The 32 London boroughs plus the City of London.
var boroughNames = []string{
	"Barking and Dagenham", "Barnet", "Bexley", "Brent", "Bromley",
	"Camden", "City of London", "Croydon", "Ealing", "Enfield",
	"Greenwich", "Hackney", "Hammersmith and Fulham", "Haringey",
	"Harrow", "Havering", "Hillingdon", "Hounslow", "Islington",
	"Kensington and Chelsea", "Kingston upon Thames", "Lambeth",
	"Lewisham", "Merton", "Newham", "Redbridge", "Richmond upon Thames",
	"Southwark", "Sutton", "Tower Hamlets", "Waltham Forest",
	"Wandsworth", "Westminster",
}

// Major categories and their minor categories, mirroring the shape of
// the Met Police extracts.
var categoryCatalog = map[string][]string{
	"Theft":                       {"Shoplifting", "Bicycle Theft", "Other Theft"},
	"Robbery":                     {"Personal Property", "Business Property"},
	"Burglary":                    {"Residential Burglary", "Business and Community Burglary"},
	"Violence Against the Person": {"Common Assault", "Harassment", "Wounding or GBH"},
	"Drug Offences":               {"Possession of Drugs", "Drug Trafficking"},
	"Vehicle Offences":            {"Theft from a Vehicle", "Theft or Taking of a Vehicle"},
}

// Count generation ranges.
const (
	baselineMin   = 15
	baselineRange = 90
	noiseRange    = 20
)

// randomInt returns a uniform int in [0, n) using crypto/rand.
func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// monthSequence returns n consecutive YYYYMM column headers starting at
// the given YYYY-MM month.
func monthSequence(start string, n int) ([]string, error) {
	t, err := time.Parse("2006-01", start)
	if err != nil {
		return nil, fmt.Errorf("%w: bad start month %q", ErrInvalidConfig, start)
	}
	months := make([]string, n)
	for i := 0; i < n; i++ {
		months[i] = t.AddDate(0, i, 0).Format("200601")
	}
	return months, nil
}

// boroughProfile fixes a per-borough crime level so the generated data
// has stable geography rather than pure noise.
type boroughProfile struct {
	name     string
	baseline int
}

func buildProfiles(n int) []boroughProfile {
	profiles := make([]boroughProfile, n)
	for i := 0; i < n; i++ {
		profiles[i] = boroughProfile{
			name:     boroughNames[i],
			baseline: baselineMin + randomInt(baselineRange),
		}
	}
	return profiles
}

// countFor produces a monthly count for one borough and minor category.
func countFor(p boroughProfile, minorIdx int) int {
	count := p.baseline/(minorIdx+1) + randomInt(noiseRange)
	if count < 0 {
		return 0
	}
	return count
}
