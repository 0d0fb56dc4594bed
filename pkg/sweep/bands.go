package sweep

import (
	"fmt"
	"strings"
)

// Band is a named frequency range the operator can pick for a sweep.
type Band struct {
	Name  string
	Start uint32
	End   uint32
}

// Bands lists the amateur bands and reference ranges offered by the analyzer.
var Bands = []Band{
	{Name: "2200m", Start: 135_700, End: 137_800},
	{Name: "630m", Start: 472_000, End: 479_000},
	{Name: "160m", Start: 1_800_000, End: 2_000_000},
	{Name: "80m", Start: 3_500_000, End: 4_000_000},
	{Name: "60m", Start: 5_330_500, End: 5_406_400},
	{Name: "40m", Start: 7_000_000, End: 7_300_000},
	{Name: "30m", Start: 10_100_000, End: 10_150_000},
	{Name: "20m", Start: 14_000_000, End: 14_350_000},
	{Name: "17m", Start: 18_068_000, End: 18_168_000},
	{Name: "15m", Start: 21_000_000, End: 21_450_000},
	{Name: "12m", Start: 24_890_000, End: 24_990_000},
	{Name: "10m", Start: 28_000_000, End: 29_700_000},
	{Name: "6m", Start: 50_000_000, End: 54_000_000},
	{Name: "VHF", Start: 144_000_000, End: 148_000_000},
	{Name: "1.25m", Start: 219_000_000, End: 225_000_000},
	{Name: "UHF", Start: 420_000_000, End: 450_000_000},
	{Name: "33cm", Start: 902_000_000, End: 928_000_000},
	{Name: "Reference RF", Start: 100_000, End: 600_000_000},
	{Name: "Full Range", Start: 100_000, End: 1_000_000_000},
}

// BandByName finds a band by case-insensitive name.
func BandByName(name string) (Band, error) {
	for _, b := range Bands {
		if strings.EqualFold(b.Name, name) {
			return b, nil
		}
	}
	return Band{}, fmt.Errorf("unknown band %q", name)
}

// FormatFrequency renders fq as "G.MMM.KKK.HHH Hz", the grouping used on the
// device display.
func FormatFrequency(fq uint32) string {
	return fmt.Sprintf("%d.%03d.%03d.%03d Hz",
		fq/1_000_000_000,
		fq/1_000_000%1000,
		fq/1000%1000,
		fq%1000,
	)
}
