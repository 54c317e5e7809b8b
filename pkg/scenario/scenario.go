// Package scenario fabricates clean datasets for a fixed set of toy domains.
package scenario

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	ds "github.com/wdm0006/baddata/pkg/dataset"
)

// DateLayout is the canonical rendering of Date_Created values.
const DateLayout = "2006-01-02"

var ErrUnknownScenario = errors.New("unknown scenario")

// Priorities is the category domain shared by every scenario.
var Priorities = []string{"Low", "Medium", "High"}

// Scenario is one fabricated-data domain with its column schema.
type Scenario struct {
	Name   string
	fields []field
	// MeasurePattern matches well-formed Resolution_Time values.
	MeasurePattern *regexp.Regexp
}

// Schema returns the ordered, role-annotated column schema.
func (s Scenario) Schema() ds.Schema {
	out := ds.Schema{Columns: make([]ds.ColumnSchema, len(s.fields))}
	for i, f := range s.fields {
		out.Columns[i] = f.ColumnSchema
	}
	return out
}

// Domains maps categorical column names to their allowed values.
func (s Scenario) Domains() map[string][]string {
	out := map[string][]string{}
	for _, f := range s.fields {
		if len(f.domain) > 0 {
			out[f.Name] = append([]string(nil), f.domain...)
		}
	}
	return out
}

var registry = map[string]Scenario{}

func register(s Scenario) {
	if err := s.Schema().Validate(true); err != nil {
		panic(fmt.Sprintf("scenario %s: %v", s.Name, err))
	}
	registry[s.Name] = s
}

// Lookup returns the named scenario.
func Lookup(name string) (Scenario, error) {
	s, ok := registry[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w %q (choose from %s)", ErrUnknownScenario, name, strings.Join(Names(), ", "))
	}
	return s, nil
}

// Names lists the registered scenarios in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// FromFilename guesses the scenario from a "<scenario>_data.<ext>" style name.
func FromFilename(path string) (Scenario, bool) {
	base := filepath.Base(path)
	for _, n := range Names() {
		if strings.HasPrefix(base, n+"_") {
			return registry[n], true
		}
	}
	return Scenario{}, false
}

// OutputName is the default sink file name for a scenario run.
func OutputName(name, ext string) string {
	if ext == "" {
		ext = "csv"
	}
	return name + "_data." + ext
}

func init() {
	register(Scenario{
		Name: "ecommerce",
		fields: []field{
			keyField("Transaction_ID"),
			personField("Customer_Name"),
			choiceField("Item", "Laptop", "Phone", "Tablet", "Headphones"),
			floatField("Amount", 50.5, 999.99),
			createdField(1),
			statusField("Completed", "Pending", "Cancelled"),
			priorityField(),
			resolutionField(10, "days"),
		},
		MeasurePattern: regexp.MustCompile(`^\d+ days$`),
	})
	register(Scenario{
		Name: "medical",
		fields: []field{
			keyField("Patient_ID"),
			personField("Name"),
			intField("Age", 1, 100),
			choiceField("Diagnosis", "Flu", "Covid-19", "Diabetes", "Hypertension"),
			createdField(1),
			personField("Doctor"),
			statusField("Treated", "Ongoing", "Discharged"),
			priorityField(),
			resolutionField(20, "days"),
		},
		MeasurePattern: regexp.MustCompile(`^\d+ days$`),
	})
	register(Scenario{
		Name: "weather",
		fields: []field{
			keyField("Record_ID"),
			cityField("Location"),
			floatField("Temperature", -30, 50),
			intField("Humidity", 10, 100),
			createdField(1),
			choiceField("Condition", "Sunny", "Rainy", "Snowy", "Cloudy"),
			statusField("Reported", "Forecast"),
			priorityField(),
			resolutionField(3, "days"),
		},
		MeasurePattern: regexp.MustCompile(`^\d+ days$`),
	})
	register(Scenario{
		Name: "cricket",
		fields: []field{
			keyField("Player_ID"),
			personField("Name"),
			intField("Matches", 1, 200),
			intField("Runs", 0, 15000),
			createdField(20),
			choiceField("Team", "India", "Australia", "England", "South Africa"),
			statusField("Active", "Retired"),
			priorityField(),
			resolutionField(5, "hours"),
		},
		MeasurePattern: regexp.MustCompile(`^\d+ hours$`),
	})
}
