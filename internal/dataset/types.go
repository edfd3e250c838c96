// Package dataset defines the typed records flowing through the pipeline and
// the decoders for the three upstream payload formats (EPA AQS JSON, CDC SODA
// rows.json, WHO CSV).
package dataset

// Study frame: five states over the 2015-2019 overlap of the two U.S. datasets.
var (
	// StateFIPS lists the state codes queried against the AQS API, in request order.
	StateFIPS = []string{"06", "08", "17", "36", "48"}

	// StateNameByFIPS maps AQS state codes to the names used by the CDC dataset.
	StateNameByFIPS = map[string]string{
		"06": "California",
		"08": "Colorado",
		"17": "Illinois",
		"36": "New York",
		"48": "Texas",
	}
)

// PM25Parameter is the AQS parameter code for "PM2.5 - Local Conditions"
const PM25Parameter = "88101"

// TargetDiseases are the chronic disease topics carried into the correlation
// and mixed-effects stages.
var TargetDiseases = []string{
	"Alcohol", "Arthritis", "Asthma", "Cardiovascular Disease",
	"Chronic Obstructive Pulmonary Disease", "Cognitive Health and Caregiving",
	"Diabetes", "Disability", "Health Status", "Immunization", "Mental Health",
	"Nutrition, Physical Activity, and Weight Status",
	"Social Determinants of Health", "Tobacco", "Cancer", "Oral Health", "Sleep",
}

// TargetStateSet returns the set of state names in the study frame
func TargetStateSet() map[string]bool {
	set := make(map[string]bool, len(StateNameByFIPS))
	for _, name := range StateNameByFIPS {
		set[name] = true
	}
	return set
}

// PM25Observation is one AQS monitor-level annual summary row
type PM25Observation struct {
	StateCode      string  `json:"state_code"`
	StateName      string  `json:"state"`
	Year           int     `json:"year"`
	ArithmeticMean float64 `json:"arithmetic_mean"`
}

// ChronicRecord is one cleaned CDC chronic disease indicator row
type ChronicRecord struct {
	YearStart   int     `json:"year_start"`
	YearEnd     int     `json:"year_end"`
	State       string  `json:"state"`
	Disease     string  `json:"disease"`
	Unit        string  `json:"unit"`
	Value       float64 `json:"value"`
	Geolocation string  `json:"geolocation"`
}

// GlobalObservation is one WHO ambient PM2.5 row
type GlobalObservation struct {
	Location string  `json:"location"`
	Year     int     `json:"year"`
	Value    float64 `json:"value"`
}

// StatePM25 is the PM2.5 aggregate at the (state, year) grain
type StatePM25 struct {
	State   string  `dataframe:"state" json:"state"`
	Year    int     `dataframe:"year" json:"year"`
	AvgPM25 float64 `dataframe:"avg_pm25" json:"avg_pm25"`
}

// DiseaseRate is the chronic disease aggregate at the (state, year, disease, unit) grain
type DiseaseRate struct {
	State         string  `dataframe:"state" json:"state"`
	Year          int     `dataframe:"year" json:"year"`
	Disease       string  `dataframe:"disease" json:"disease"`
	Unit          string  `dataframe:"unit" json:"unit"`
	AvgPrevalence float64 `dataframe:"avg_prevalence_rate" json:"avg_prevalence_rate"`
}

// GlobalMean is the worldwide PM2.5 aggregate per year
type GlobalMean struct {
	Year    int     `dataframe:"year" json:"year"`
	AvgPM25 float64 `dataframe:"avg_pm25" json:"avg_pm25"`
}

// MergedRow joins the two U.S. aggregates on (state, year).
// Unique per (state, year, disease, unit).
type MergedRow struct {
	State         string  `dataframe:"state" json:"state"`
	Year          int     `dataframe:"year" json:"year"`
	Disease       string  `dataframe:"disease" json:"disease"`
	Unit          string  `dataframe:"unit" json:"unit"`
	AvgPM25       float64 `dataframe:"avg_pm25" json:"avg_pm25"`
	AvgPrevalence float64 `dataframe:"avg_prevalence_rate" json:"avg_prevalence_rate"`
}
