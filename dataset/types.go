package dataset

const (
	// PrimarySource labels rows recorded alongside the ground-truth survey.
	PrimarySource = "ZEB"

	// GradeColumn is the derived, digitized ground-truth grade.
	GradeColumn = "gtr - grade"
	// SetupColumn is derived as device + vehicle + mounting when absent.
	SetupColumn = "setup"
	// SourceColumn is added with ReadOptions.DefaultSource when absent.
	SourceColumn = "source"
)

// Columns is the column contract between a dataset file and the core. Empty
// names mark a column the file does not carry.
type Columns struct {
	RawSignal      string `json:"raw_signal" toml:"raw_signal" yaml:"raw_signal"`
	Vehicle        string `json:"vehicle" toml:"vehicle" yaml:"vehicle"`
	Device         string `json:"device" toml:"device" yaml:"device"`
	Mounting       string `json:"mounting" toml:"mounting" yaml:"mounting"`
	Source         string `json:"source" toml:"source" yaml:"source"`
	SegmentID      string `json:"segment_id" toml:"segment_id" yaml:"segment_id"`
	SegmentType    string `json:"segment_type" toml:"segment_type" yaml:"segment_type"`
	Velocity       string `json:"velocity" toml:"velocity" yaml:"velocity"`
	VelocityBucket string `json:"velocity_bucket" toml:"velocity_bucket" yaml:"velocity_bucket"`
	Target         string `json:"target" toml:"target" yaml:"target"`
	Note           string `json:"note" toml:"note" yaml:"note"`
	Account        string `json:"account" toml:"account" yaml:"account"`
	Setup          string `json:"setup" toml:"setup" yaml:"setup"`
}

// DefaultColumns matches the field recording exports.
func DefaultColumns() Columns {
	return Columns{
		RawSignal:      "raw_accelerometer_signal",
		Vehicle:        "car",
		Device:         "phone",
		Mounting:       "mounting",
		Source:         "source",
		SegmentID:      "segment_id",
		SegmentType:    "segment_type",
		Velocity:       "vel [km/h]",
		VelocityBucket: "vel [km/h] (r)",
		Target:         "ZWAUN_15",
		Note:           "note",
		Account:        "account",
		Setup:          "setup",
	}
}

// Need selects the column groups a caller depends on.
type Need uint8

const (
	// NeedGrading requires the velocity bucket and ground-truth columns.
	NeedGrading Need = 1 << iota
	// NeedSegments requires vehicle, device and segment id.
	NeedSegments
	// NeedNotes requires the condition label column.
	NeedNotes
)

// ReadOptions controls how a dataset file is interpreted.
type ReadOptions struct {
	Columns Columns
	Needs   Need

	// DefaultSource fills Row.Source when the file has no source column.
	DefaultSource string

	// VehicleAliases renames vehicle labels while reading.
	VehicleAliases map[string]string

	// BucketWidth derives the velocity bucket from the velocity column when
	// the file carries no bucket column. Zero disables the derivation.
	BucketWidth float64
}

// DefaultVehicleAliases anonymizes the vehicle labels of the field study.
func DefaultVehicleAliases() map[string]string {
	return map[string]string{
		"Tim Formentor":   "SUV",
		"Opel Van":        "Van 1",
		"VW Small Van":    "Van 2",
		"Mercedes VAN":    "Van 3",
		"Tim Private Car": "Car",
	}
}

// DefaultReadOptions reads the field recordings for a grid benchmark.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Columns:        DefaultColumns(),
		Needs:          NeedGrading | NeedSegments,
		DefaultSource:  PrimarySource,
		VehicleAliases: DefaultVehicleAliases(),
	}
}

// Row is one recorded road segment pass.
type Row struct {
	// Index is the zero-based data line in the source file.
	Index int

	RawSignal   *string
	Vehicle     string
	Device      string
	Mounting    string
	Source      string
	Setup       string
	SegmentType string
	Note        string
	Account     string

	SegmentID      *int
	Velocity       *float64
	VelocityBucket *float64
	Target         *float64

	// Grade is the digitized target (1, 3 or 5), zero when no target.
	Grade int
}

// Dataset is a loaded table: the original cells for export plus typed rows.
type Dataset struct {
	Header  []string
	Records [][]string
	Rows    []Row

	// Derived lists the columns added while reading, in export order.
	Derived []string
}

// Len is the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// Filter returns the rows keep accepts, in order. Row indexes are kept.
func (d *Dataset) Filter(keep func(Row) bool) *Dataset {
	out := &Dataset{Header: d.Header, Derived: d.Derived}
	for i, row := range d.Rows {
		if !keep(row) {
			continue
		}
		out.Rows = append(out.Rows, row)
		out.Records = append(out.Records, d.Records[i])
	}
	return out
}

// WithAccounts keeps rows whose account is one of accounts.
func (d *Dataset) WithAccounts(accounts ...string) *Dataset {
	want := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		want[a] = true
	}
	return d.Filter(func(r Row) bool { return want[r.Account] })
}

// RawSignals returns the nullable raw trace cells in row order.
func (d *Dataset) RawSignals() []*string {
	out := make([]*string, len(d.Rows))
	for i := range d.Rows {
		out[i] = d.Rows[i].RawSignal
	}
	return out
}

// Accounts lists the distinct account labels in first-seen order.
func (d *Dataset) Accounts() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.Rows {
		if r.Account == "" || seen[r.Account] {
			continue
		}
		seen[r.Account] = true
		out = append(out, r.Account)
	}
	return out
}

// DigitizeGrade maps the continuous unevenness target onto grades 1, 3 and 5.
func DigitizeGrade(target float64) int {
	switch {
	case target <= 2:
		return 1
	case target <= 4:
		return 3
	default:
		return 5
	}
}
