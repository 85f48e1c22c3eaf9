// Package countries holds the EU country table shared by the dataset pipelines.
package countries

// Country describes one EU member state and the identifiers the remote
// sources use for it: ISO2 for Overpass area filters, ISO3 for the Global
// Power Plant Database and EIC for the ENTSO-E transparency platform.
type Country struct {
	Name string
	ISO2 string
	ISO3 string
	EIC  string
}

// Cyprus, Luxembourg and Malta have no ENTSO-E control area, so their EIC
// code is empty and they are excluded from the interconnection sweep.
var all = []Country{
	{Name: "Austria", ISO2: "AT", ISO3: "AUT", EIC: "10YAT-APG------L"},
	{Name: "Belgium", ISO2: "BE", ISO3: "BEL", EIC: "10YBE----------2"},
	{Name: "Bulgaria", ISO2: "BG", ISO3: "BGR", EIC: "10YCA-BULGARIA-R"},
	{Name: "Croatia", ISO2: "HR", ISO3: "HRV", EIC: "10YHR-HEP------M"},
	{Name: "Cyprus", ISO2: "CY", ISO3: "CYP", EIC: ""},
	{Name: "Czech Republic", ISO2: "CZ", ISO3: "CZE", EIC: "10YCZ-CEPS-----N"},
	{Name: "Denmark", ISO2: "DK", ISO3: "DNK", EIC: "10Y1001A1001A65H"},
	{Name: "Estonia", ISO2: "EE", ISO3: "EST", EIC: "10Y1001A1001A39I"},
	{Name: "Finland", ISO2: "FI", ISO3: "FIN", EIC: "10YFI-1--------U"},
	{Name: "France", ISO2: "FR", ISO3: "FRA", EIC: "10YFR-RTE------C"},
	{Name: "Germany", ISO2: "DE", ISO3: "DEU", EIC: "10Y1001A1001A83F"},
	{Name: "Greece", ISO2: "GR", ISO3: "GRC", EIC: "10YGR-HTSO-----Y"},
	{Name: "Hungary", ISO2: "HU", ISO3: "HUN", EIC: "10YHU-MAVIR----U"},
	{Name: "Ireland", ISO2: "IE", ISO3: "IRL", EIC: "10YIE-1001A00010"},
	{Name: "Italy", ISO2: "IT", ISO3: "ITA", EIC: "10YIT-GRTN-----B"},
	{Name: "Latvia", ISO2: "LV", ISO3: "LVA", EIC: "10YLV-1001A00074"},
	{Name: "Lithuania", ISO2: "LT", ISO3: "LTU", EIC: "10YLT-1001A0008Q"},
	{Name: "Luxembourg", ISO2: "LU", ISO3: "LUX", EIC: ""},
	{Name: "Malta", ISO2: "MT", ISO3: "MLT", EIC: ""},
	{Name: "Netherlands", ISO2: "NL", ISO3: "NLD", EIC: "10YNL----------L"},
	{Name: "Poland", ISO2: "PL", ISO3: "POL", EIC: "10YPL-AREA-----S"},
	{Name: "Portugal", ISO2: "PT", ISO3: "PRT", EIC: "10YPT-REN------W"},
	{Name: "Romania", ISO2: "RO", ISO3: "ROU", EIC: "10YRO-TEL------P"},
	{Name: "Slovakia", ISO2: "SK", ISO3: "SVK", EIC: "10YSK-SEPS-----K"},
	{Name: "Slovenia", ISO2: "SI", ISO3: "SVN", EIC: "10YSI-ELES-----O"},
	{Name: "Spain", ISO2: "ES", ISO3: "ESP", EIC: "10YES-REE------0"},
	{Name: "Sweden", ISO2: "SE", ISO3: "SWE", EIC: "10YSE-1--------K"},
}

// All returns every EU member state.
func All() []Country {
	out := make([]Country, len(all))
	copy(out, all)

	return out
}

// TSOAreas returns the subset of countries with an ENTSO-E control area.
func TSOAreas() []Country {
	var out []Country

	for _, c := range all {
		if c.EIC != "" {
			out = append(out, c)
		}
	}

	return out
}

// ISO3Set returns the ISO3 codes of all EU member states as a lookup set.
func ISO3Set() map[string]bool {
	set := make(map[string]bool, len(all))
	for _, c := range all {
		set[c.ISO3] = true
	}

	return set
}

// ByName returns the country with the given name, if known.
func ByName(name string) (Country, bool) {
	for _, c := range all {
		if c.Name == name {
			return c, true
		}
	}

	return Country{}, false
}
